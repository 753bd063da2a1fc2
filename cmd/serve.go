package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/internal/metrics"
	"github.com/junyeong-ai/modmap/internal/server"
	"github.com/junyeong-ai/modmap/internal/telemetry"
	"github.com/junyeong-ai/modmap/internal/validate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve document validation over HTTP",
	Long: `Starts an HTTP service that validates posted documents:

  POST /v1/validate/{kind}   body is a JSON, YAML or TOML document
  GET  /v1/schema/{kind}     JSON Schema of the kind
  GET  /v1/version           supported schema version
  GET  /metrics              Prometheus metrics

Verdicts are cached for serve.cache_ttl. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: serve.addr setting)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewWithRegistry(reg)

	e, err := newEnv(cmd, validate.WithMetrics(collector))
	if err != nil {
		return err
	}
	defer e.close()

	cfg := server.Config{
		Addr:         e.cfg.Serve.Addr,
		MaxBodyBytes: e.cfg.Serve.MaxBodyBytes,
		CacheTTL:     e.cfg.Serve.CacheTTL,
		ReadTimeout:  e.cfg.Serve.ReadTimeout,
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	srv := server.New(cfg, e.validator,
		server.WithMetrics(collector, reg),
		server.WithLogger(e.log),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.emit(telemetry.KindServeStart, map[string]any{"addr": cfg.Addr})
	err = srv.ListenAndServe(ctx)
	e.emit(telemetry.KindServeStop, nil)
	return err
}
