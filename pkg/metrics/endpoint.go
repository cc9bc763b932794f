// Package metrics exposes Prometheus instruments for endpoint traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rhizomer"

// EndpointMetrics counts and times calls made to dataset endpoints.
// A nil *EndpointMetrics records nothing.
type EndpointMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewEndpointMetrics creates the instruments and registers them with reg.
// A nil registerer leaves them unregistered, which is what tests want.
func NewEndpointMetrics(reg prometheus.Registerer) *EndpointMetrics {
	m := &EndpointMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "endpoint",
			Name:      "calls_total",
			Help:      "Endpoint operations by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "endpoint",
			Name:      "call_duration_seconds",
			Help:      "Time spent on one endpoint's share of an operation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "endpoint",
			Name:      "skipped_rows_total",
			Help:      "Result rows skipped because a term was malformed or blacklisted.",
		}, []string{"operation", "reason"}),
	}

	if reg != nil {
		reg.MustRegister(m.calls, m.duration, m.rows)
	}
	return m
}

// Observe records one endpoint call that started at start.
func (m *EndpointMetrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SkippedRow records a result row dropped during decoding.
func (m *EndpointMetrics) SkippedRow(operation, reason string) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(operation, reason).Inc()
}
