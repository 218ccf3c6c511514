// Package telemetry owns the Prometheus collectors and the otel tracer used by the pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	tierResults *prometheus.CounterVec
	subAnalysis *prometheus.CounterVec
	generation  *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		tierResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_tier_requests_total",
			Help: "Source broker tier probes by outcome (hit, empty, error, skipped).",
		}, []string{"tier", "outcome"}),
		subAnalysis: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_subanalysis_total",
			Help: "Deep analysis leaves by terminal state.",
		}, []string{"kind", "state"}),
		generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsdesk_generation_seconds",
			Help:    "Latency of generative backend calls by task.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"task"}),
	}
	reg.MustRegister(m.tierResults, m.subAnalysis, m.generation,
		prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) TierProbe(tier, outcome string) {
	if m == nil {
		return
	}
	m.tierResults.WithLabelValues(tier, outcome).Inc()
}

func (m *Metrics) SubAnalysis(kind, state string) {
	if m == nil {
		return
	}
	m.subAnalysis.WithLabelValues(kind, state).Inc()
}

// ObserveGeneration records how long a generative call for task took.
func (m *Metrics) ObserveGeneration(task string, d time.Duration) {
	if m == nil {
		return
	}
	m.generation.WithLabelValues(task).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
