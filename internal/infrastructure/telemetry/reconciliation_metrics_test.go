package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func findSum(rm metricdata.ResourceMetrics, name string) (metricdata.Sum[int64], bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				return sum, true
			}
		}
	}
	return metricdata.Sum[int64]{}, false
}

func TestNewReconciliationMetrics_NilMeter(t *testing.T) {
	m, err := NewReconciliationMetrics(nil, zap.NewNop())

	require.Error(t, err)
	assert.Nil(t, m)
	assert.Equal(t, "NewReconciliationMetrics: meter cannot be nil", err.Error())
}

func TestNewReconciliationMetrics_NoopMeter(t *testing.T) {
	m, err := NewReconciliationMetrics(noop.NewMeterProvider().Meter("test"), nil)
	require.NoError(t, err)

	// Should not panic
	m.RecordOutcome(context.Background(), "payment", "RECONCILED", time.Millisecond)
}

func TestReconciliationMetrics_RecordOutcome(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewReconciliationMetrics(provider.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOutcome(ctx, "payment", "RECONCILED", 20*time.Millisecond)
	m.RecordOutcome(ctx, "payment", "RECONCILED", 30*time.Millisecond)
	m.RecordOutcome(ctx, "statement_line", "NO_REFERENCE", time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sum, ok := findSum(rm, "soreconcile_outcome_total")
	require.True(t, ok, "soreconcile_outcome_total should be recorded")

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		path, _ := dp.Attributes.Value(attribute.Key("path"))
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		counts[path.AsString()+"/"+status.AsString()] = dp.Value
	}
	assert.Equal(t, int64(2), counts["payment/RECONCILED"])
	assert.Equal(t, int64(1), counts["statement_line/NO_REFERENCE"])
}
