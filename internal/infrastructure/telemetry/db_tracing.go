package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/erp/manufacturing/internal/infrastructure/config"
)

// DBTracingConfig controls GORM span creation and slow-query reporting.
type DBTracingConfig struct {
	Enabled            bool
	System             string // postgres or sqlite
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
}

// DBTracingConfigFrom derives the tracing settings from application config.
func DBTracingConfigFrom(cfg *config.Config) DBTracingConfig {
	system := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		system = "sqlite"
	}
	return DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		System:             system,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}
}

const (
	startTimeKey        = "telemetry:start"
	slowQueryEvent      = "db.slow_query"
	maxSlowSQLLength    = 512
	defaultSlowQueryDur = 200 * time.Millisecond
)

// RegisterDBTracing installs otelgorm plus a slow-query hook. Query
// variables are kept out of spans unless LogFullSQL is set.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.System),
		otelgorm.WithAttributes(attribute.String("db.system", cfg.System)),
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm plugin: %w", err)
	}

	threshold := cfg.SlowQueryThreshold
	if threshold <= 0 {
		threshold = defaultSlowQueryDur
	}
	slow := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			elapsed, ok := elapsedSince(tx)
			if !ok || elapsed < threshold {
				return
			}
			sql := tx.Statement.SQL.String()
			if len(sql) > maxSlowSQLLength {
				sql = sql[:maxSlowSQLLength] + "..."
			}
			trace.SpanFromContext(tx.Statement.Context).AddEvent(slowQueryEvent, trace.WithAttributes(
				attribute.String("db.operation", op),
				attribute.String("db.table", tx.Statement.Table),
				attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
			))
			logger.Warn("Slow database query",
				zap.String("operation", op),
				zap.String("table", tx.Statement.Table),
				zap.Duration("elapsed", elapsed),
				zap.Int64("rows", tx.RowsAffected),
				zap.String("sql", sql),
			)
		}
	}
	return registerTimingHooks(db, "otel_slow", slow)
}

func markStart(tx *gorm.DB) {
	tx.InstanceSet(startTimeKey, time.Now())
}

func elapsedSince(tx *gorm.DB) (time.Duration, bool) {
	v, ok := tx.InstanceGet(startTimeKey)
	if !ok {
		return 0, false
	}
	start, ok := v.(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// registerTimingHooks wraps every GORM processor with a start marker and an
// after hook built per operation name.
func registerTimingHooks(db *gorm.DB, prefix string, after func(op string) func(*gorm.DB)) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(prefix+":before_create", markStart),
		cb.Create().After("gorm:create").Register(prefix+":after_create", after("create")),
		cb.Query().Before("gorm:query").Register(prefix+":before_query", markStart),
		cb.Query().After("gorm:query").Register(prefix+":after_query", after("query")),
		cb.Update().Before("gorm:update").Register(prefix+":before_update", markStart),
		cb.Update().After("gorm:update").Register(prefix+":after_update", after("update")),
		cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", markStart),
		cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after("delete")),
		cb.Row().Before("gorm:row").Register(prefix+":before_row", markStart),
		cb.Row().After("gorm:row").Register(prefix+":after_row", after("row")),
		cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", markStart),
		cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after("raw")),
	)
}
