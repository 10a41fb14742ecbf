package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// DBMetrics records query counts and latencies from GORM callbacks and
// reports connection-pool state through observable instruments.
type DBMetrics struct {
	queries       *Counter
	queryDuration *Histogram
	slowQueries   *Counter
	slowThreshold time.Duration
	registration  metric.Registration
}

// RegisterDBMetrics attaches query instrumentation to db. Pool gauges are
// read from sql.DB.Stats on each collection cycle.
func RegisterDBMetrics(db *gorm.DB, meter metric.Meter, slowThreshold time.Duration) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowQueryDur
	}

	m := &DBMetrics{slowThreshold: slowThreshold}
	var err error
	if m.queries, err = NewCounter(meter, "mfg_db_queries_total", "Database queries executed", "{queries}"); err != nil {
		return nil, err
	}
	if m.slowQueries, err = NewCounter(meter, "mfg_db_slow_queries_total", "Database queries above the slow threshold", "{queries}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "mfg_db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	conns, err := meter.Int64ObservableGauge("mfg_db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create pool gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("mfg_db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create pool wait counter: %w", err)
	}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(conns, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, conns, waits)
	if err != nil {
		return nil, fmt.Errorf("register pool callback: %w", err)
	}

	if err := registerTimingHooks(db, "db_metrics", m.afterQuery); err != nil {
		_ = m.registration.Unregister()
		return nil, fmt.Errorf("register db metrics callbacks: %w", err)
	}
	return m, nil
}

func (m *DBMetrics) afterQuery(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		elapsed, ok := elapsedSince(tx)
		if !ok {
			return
		}
		ctx := tx.Statement.Context
		attrs := []attribute.KeyValue{AttrDBOperation.String(op), AttrDBTable.String(tx.Statement.Table)}
		m.queries.Inc(ctx, attrs...)
		m.queryDuration.RecordDuration(ctx, elapsed, attrs...)
		if elapsed >= m.slowThreshold {
			m.slowQueries.Inc(ctx, attrs...)
		}
	}
}

// Close stops pool observation.
func (m *DBMetrics) Close() error {
	if m == nil || m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
