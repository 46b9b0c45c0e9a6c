package telemetry

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBDurationBuckets are bucket boundaries for ledger query latency (seconds).
var DBDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// Ledger query attribute keys.
var (
	AttrDBOperation = attribute.Key("db_operation")
	AttrDBTable     = attribute.Key("db_table")
	AttrDBState     = attribute.Key("state")
)

type dbMetricsStartKey struct{}

// LedgerDBMetrics records ledger query counts and latency per operation, and
// reports connection pool occupancy on every collection.
type LedgerDBMetrics struct {
	queryTotal    *Counter
	queryDuration *Histogram
	registration  metric.Registration
	logger        *zap.Logger
}

// RegisterLedgerDBMetrics installs query callbacks on db and a pool gauge
// callback on the meter. Unregister releases the gauge callback.
func RegisterLedgerDBMetrics(db *gorm.DB, meter metric.Meter, logger *zap.Logger) (*LedgerDBMetrics, error) {
	if meter == nil {
		return nil, &MetricsError{Op: "RegisterLedgerDBMetrics", Err: "meter cannot be nil"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	queryTotal, err := NewCounter(meter, "ledger_db_query_total",
		"Total number of ledger queries by operation", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger_db_query_duration_seconds",
		Description: "Ledger query latency in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	m := &LedgerDBMetrics{
		queryTotal:    queryTotal,
		queryDuration: queryDuration,
		logger:        logger,
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := m.registerPoolGauge(meter, sqlDB); err != nil {
		return nil, err
	}
	if err := m.registerCallbacks(db); err != nil {
		_ = m.Unregister()
		return nil, err
	}

	logger.Info("Ledger database metrics registered")
	return m, nil
}

func (m *LedgerDBMetrics) registerPoolGauge(meter metric.Meter, sqlDB *sql.DB) error {
	connections, err := meter.Int64ObservableGauge("ledger_db_pool_connections",
		metric.WithDescription("Ledger connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("ledger_db_pool_connections_max",
		metric.WithDescription("Maximum open ledger connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return err
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, connections, maxOpen)
	return err
}

func (m *LedgerDBMetrics) registerCallbacks(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, dbMetricsStartKey{}, time.Now())
		}
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) { m.record(tx, operation) }
	}

	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("ledger_metrics:before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("ledger_metrics:after_query", after("SELECT")); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:create").Register("ledger_metrics:before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("ledger_metrics:after_create", after("INSERT")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("ledger_metrics:before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("ledger_metrics:after_update", after("UPDATE")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("ledger_metrics:before_raw", before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("ledger_metrics:after_raw", after("RAW"))
}

func (m *LedgerDBMetrics) record(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(dbMetricsStartKey{}).(time.Time)
	if !ok {
		return
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation), AttrDBTable.String(table))
	m.queryDuration.RecordDuration(ctx, time.Since(start), AttrDBOperation.String(operation))
}

// Unregister stops pool gauge collection. Query callbacks stay installed on
// the connection and record into instruments the provider no longer exports.
func (m *LedgerDBMetrics) Unregister() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
