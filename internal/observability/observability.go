// Package observability provides the structured event logger and Prometheus
// metrics for the triage pipeline.  Events are PII-free: raw user text is
// never logged, only derived booleans, ids and categories.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// NewLogger returns the production JSON logger.
func NewLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	Requests       *prometheus.CounterVec
	SafetyOutcomes *prometheus.CounterVec
	Latency        prometheus.Histogram
	Errors         *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_requests_total",
			Help: "Total chat turns by final status.",
		}, []string{"status"}),
		SafetyOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "safety_check_outcomes_total",
			Help: "Safety self-check outcomes.",
		}, []string{"action"}),
		Latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "request_latency_ms",
			Help:    "End-to-end latency of a chat turn in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3200, 6400},
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Count of turn errors by type.",
		}, []string{"type"}),
	}
}

// RecordStatus counts a finished turn.
func (m *Metrics) RecordStatus(status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(status).Inc()
}

// RecordSafety counts a self-check outcome.
func (m *Metrics) RecordSafety(action string) {
	if m == nil || action == "" {
		return
	}
	m.SafetyOutcomes.WithLabelValues(action).Inc()
}

// ObserveLatency records a turn's elapsed milliseconds.
func (m *Metrics) ObserveLatency(ms float64) {
	if m == nil {
		return
	}
	m.Latency.Observe(ms)
}

// RecordError counts a propagated turn failure by error type.
func (m *Metrics) RecordError(errType string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(errType).Inc()
}
