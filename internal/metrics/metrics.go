// Package metrics exposes Prometheus counters for report runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics is safe to use through a nil pointer, in which case nothing is recorded.
type Metrics struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	toolCalls *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research",
			Name:      "runs_total",
			Help:      "Report runs by provider and outcome.",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "research",
			Name:      "generation_seconds",
			Help:      "Wall time of successful agent runs.",
			Buckets:   []float64{5, 15, 30, 60, 120, 240, 480},
		}, []string{"provider"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research",
			Name:      "tool_calls_total",
			Help:      "Tool calls issued by the agent.",
		}, []string{"provider"}),
	}
	reg.MustRegister(m.runs, m.duration, m.toolCalls)
	return m
}

// Rejected counts a run stopped before generation (validation or selection).
func (m *Metrics) Rejected(provider string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(provider, OutcomeRejected).Inc()
}

// Failed counts a run whose generation call returned an error.
func (m *Metrics) Failed(provider string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(provider, OutcomeFailed).Inc()
}

// Succeeded counts a finished report.
func (m *Metrics) Succeeded(provider string, took time.Duration, toolCalls int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(provider, OutcomeSuccess).Inc()
	m.duration.WithLabelValues(provider).Observe(took.Seconds())
	m.toolCalls.WithLabelValues(provider).Add(float64(toolCalls))
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
