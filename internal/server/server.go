// Package server exposes document validation over HTTP.
//
// Routes:
//
//	POST /v1/validate/{kind}  validate the request body as a modulemap, manifest or plugin
//	GET  /v1/version          supported schema version
//	GET  /v1/schema/{kind}    JSON Schema of a document kind
//	GET  /healthz             liveness
//	GET  /metrics             Prometheus metrics, when enabled
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/junyeong-ai/modmap/internal/docfmt"
	"github.com/junyeong-ai/modmap/internal/metrics"
	"github.com/junyeong-ai/modmap/internal/validate"
	"github.com/junyeong-ai/modmap/schema"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

const shutdownTimeout = 10 * time.Second

// unmatchedRoute labels requests no route matched.
const unmatchedRoute = "unmatched"

// Config holds the service settings.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	CacheTTL     time.Duration
	ReadTimeout  time.Duration
}

// Verdict is the response body of a validation request.
type Verdict struct {
	OK            bool   `json:"ok"`
	Kind          string `json:"kind,omitempty"`
	SchemaVersion string `json:"schema_version,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
	Error         string `json:"error,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Server validates documents sent over HTTP. Verdicts are cached by the
// SHA-256 of kind, format and body, so repeated submissions skip the
// registry.
type Server struct {
	cfg       Config
	validator *validate.Validator
	cache     *gocache.Cache
	metrics   *metrics.Collector
	gatherer  prometheus.Gatherer
	log       zerolog.Logger
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request and cache metrics in c and serves g on /metrics.
func WithMetrics(c *metrics.Collector, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = c
		s.gatherer = g
	}
}

// WithLogger sets the access and lifecycle logger. The default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds a server around v. A non-positive CacheTTL disables caching.
func New(cfg Config, v *validate.Validator, opts ...Option) *Server {
	s := &Server{cfg: cfg, validator: v, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.CacheTTL > 0 {
		s.cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/schema/{kind}", s.handleSchema)
		r.Post("/validate/{kind}", s.handleValidate)
	})
	return r
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"schema_version": s.validator.Registry().Version().String()})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	kind, err := schema.ParseDocumentKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	raw, err := schema.JSONSchema(kind)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	kind, err := schema.ParseDocumentKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "read body: " + err.Error()})
		return
	}
	format := docfmt.FromMediaType(r.Header.Get("Content-Type"))

	key := cacheKey(kind, format, body)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if v, ok := cached.(Verdict); ok {
				s.metrics.RecordCache(true)
				writeVerdict(w, v)
				return
			}
		}
		s.metrics.RecordCache(false)
	}

	source := "http:" + middleware.GetReqID(r.Context())
	res := s.validator.Bytes(source, kind, body, format)
	v := Verdict{OK: res.OK(), Kind: string(res.Kind)}
	if res.OK() {
		v.SchemaVersion = res.SchemaVersion
	} else {
		v.ErrorKind = string(res.ErrorKind())
		v.Error = res.Err.Error()
	}
	if s.cache != nil {
		s.cache.SetDefault(key, v)
	}
	writeVerdict(w, v)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, waiting for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("starting http server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// requestID propagates an incoming X-Request-Id or assigns a fresh UUID,
// echoing it on the response and storing it where middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog writes one log line per request and records request metrics
// under the matched route pattern.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if s.metrics != nil {
			s.metrics.RequestsInFlight.Inc()
			defer s.metrics.RequestsInFlight.Dec()
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.RecordRequest(r.Method, route, ww.Status(), elapsed)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func cacheKey(kind schema.DocumentKind, format docfmt.Format, body []byte) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func writeVerdict(w http.ResponseWriter, v Verdict) {
	status := http.StatusOK
	if !v.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
