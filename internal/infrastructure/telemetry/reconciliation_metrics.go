package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Reconciliation attribute keys.
var (
	AttrPath   = attribute.Key("path")
	AttrStatus = attribute.Key("status")
)

// ReconcileDurationBuckets are bucket boundaries for one reconciliation attempt (seconds).
var ReconcileDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// ReconciliationMetrics counts reconciliation attempts by path and outcome
// status and records how long each attempt took.
type ReconciliationMetrics struct {
	logger       *zap.Logger
	outcomeTotal *Counter
	duration     *Histogram
}

// NewReconciliationMetrics creates the reconciliation instruments on the given meter.
func NewReconciliationMetrics(meter metric.Meter, logger *zap.Logger) (*ReconciliationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	outcomeTotal, err := NewCounter(
		meter,
		"soreconcile_outcome_total",
		"Total number of reconciliation attempts by path and outcome status",
		"{attempts}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "soreconcile_attempt_duration_seconds",
		Description: "Duration of one reconciliation attempt",
		Unit:        "s",
		Boundaries:  ReconcileDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &ReconciliationMetrics{
		logger:       logger,
		outcomeTotal: outcomeTotal,
		duration:     duration,
	}, nil
}

// RecordOutcome records one finished attempt.
func (m *ReconciliationMetrics) RecordOutcome(ctx context.Context, path, status string, elapsed time.Duration) {
	m.outcomeTotal.Inc(ctx, AttrPath.String(path), AttrStatus.String(status))
	m.duration.RecordDuration(ctx, elapsed, AttrPath.String(path))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewReconciliationMetrics", Err: "meter cannot be nil"}
