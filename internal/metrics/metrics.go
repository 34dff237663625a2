package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service's collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	// CompletionRequests counts completion calls by request kind and outcome.
	CompletionRequests *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec

	Submissions       *prometheus.CounterVec
	DegenerateMatches *prometheus.CounterVec
	PersistFailures   *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		CompletionRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revision_completion_requests_total",
				Help: "Total completion service requests",
			},
			[]string{"kind", "outcome"}, // outcome: success/config_missing/upstream/malformed
		),
		CompletionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "revision_completion_duration_seconds",
				Help:    "Time spent waiting on the completion service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		Submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revision_submissions_total",
				Help: "Scored checkpoint submissions",
			},
			[]string{"stage"},
		),
		DegenerateMatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revision_degenerate_matches_total",
				Help: "Fill-in comparisons where a side normalized to the empty string",
			},
			[]string{"matched"},
		),
		PersistFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revision_persist_failures_total",
				Help: "Failed best-effort progress writes",
			},
			[]string{"stage"},
		),
		ActiveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "revision_active_sessions",
				Help: "Sessions currently held in memory",
			},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revision_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
	}
}
