// Package telemetry wires Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ArielDRighi/tarot/internal/ports"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	interpretations  *prometheus.CounterVec
	duration         prometheus.Histogram
	auditFailures    prometheus.Counter
	requestDurations *prometheus.HistogramVec
}

var _ ports.GenerationObserver = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		interpretations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tarot_interpretations_total",
			Help: "Interpretation generation attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tarot_interpretation_duration_seconds",
			Help:    "Time spent generating interpretations.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tarot_interpretation_audit_failures_total",
			Help: "Interpretation audit records that could not be stored.",
		}),
		requestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tarot_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.interpretations, m.duration, m.auditFailures, m.requestDurations)
	return m
}

func (m *Metrics) ObserveGeneration(outcome string, d time.Duration) {
	m.interpretations.WithLabelValues(outcome).Inc()
	if outcome != ports.OutcomeUnconfigured {
		m.duration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveAuditFailure() {
	m.auditFailures.Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requestDurations.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
