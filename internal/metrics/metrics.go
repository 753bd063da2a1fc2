// Package metrics provides Prometheus metrics collection for modmap.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeAccepted is the outcome label for documents the registry admitted.
const OutcomeAccepted = "accepted"

// Collector holds all Prometheus metrics for modmap. A nil *Collector is
// valid and records nothing.
type Collector struct {
	// Validation metrics
	Validations *prometheus.CounterVec
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New creates a new metrics collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modmap",
				Name:      "validations_total",
				Help:      "Total number of documents validated, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "modmap",
				Name:      "verdict_cache_hits_total",
				Help:      "Validation requests answered from the verdict cache",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "modmap",
				Name:      "verdict_cache_misses_total",
				Help:      "Validation requests that ran the registry",
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modmap",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modmap",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "modmap",
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
	}
}

// RecordValidation counts one validation. An empty errorKind means the
// document was accepted.
func (c *Collector) RecordValidation(kind, errorKind string) {
	if c == nil {
		return
	}
	outcome := errorKind
	if outcome == "" {
		outcome = OutcomeAccepted
	}
	c.Validations.WithLabelValues(kind, outcome).Inc()
}

// RecordCache counts a verdict cache lookup.
func (c *Collector) RecordCache(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.CacheHits.Inc()
		return
	}
	c.CacheMisses.Inc()
}

// RecordRequest records a finished HTTP request. route is the matched route
// pattern, never the raw path, to keep label cardinality bounded.
func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
