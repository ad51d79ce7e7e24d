package telemetry_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/ArielDRighi/tarot/internal/ports"
	"github.com/ArielDRighi/tarot/internal/telemetry"
)

func TestMetrics_ObserveGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.ObserveGeneration(ports.OutcomeSuccess, 2*time.Second)
	m.ObserveGeneration(ports.OutcomeSuccess, time.Second)
	m.ObserveGeneration(ports.OutcomeFailed, time.Second)
	m.ObserveGeneration(ports.OutcomeUnconfigured, 0)
	m.ObserveAuditFailure()

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var observed uint64
	for _, mf := range families {
		switch mf.GetName() {
		case "tarot_interpretations_total":
			for _, metric := range mf.GetMetric() {
				counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
			}
		case "tarot_interpretation_duration_seconds":
			observed = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		case "tarot_interpretation_audit_failures_total":
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}

	assert.Equal(t, map[string]float64{"success": 2, "failed": 1, "unconfigured": 1}, counts)
	assert.Equal(t, uint64(3), observed, "unconfigured attempts are not timed")
}

func TestMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.ObserveRequest("GET", "/v1/decks", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/v1/decks", 200, 20*time.Millisecond)
	m.ObserveRequest("POST", "/v1/readings", 400, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "tarot_http_request_duration_seconds"))
}

func TestInitTracerProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tp, err := telemetry.InitTracerProvider("tarotd-test", "http://127.0.0.1:1/api/traces", logger)
	require.NoError(t, err)

	assert.Same(t, tp, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = tp.Shutdown(ctx)
}
