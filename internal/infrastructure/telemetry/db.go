package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig holds database instrumentation settings
type DBConfig struct {
	TracingEnabled bool
	MetricsEnabled bool
	LogFullSQL     bool // include bound variables in spans
	SlowThreshold  time.Duration
}

// DBMetrics holds the query and connection pool instruments
type DBMetrics struct {
	queryDuration *Histogram
	slowQueries   *Counter
	slowThreshold time.Duration
}

// NewDBMetrics creates the database instruments. Pool gauges are observed from
// sqlDB on every collection.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThreshold time.Duration) (*DBMetrics, error) {
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueries, err := NewCounter(meter, "db_slow_query_total",
		"Statements slower than the configured threshold", "{query}")
	if err != nil {
		return nil, err
	}

	if sqlDB != nil {
		connections, err := meter.Int64ObservableGauge("db_pool_connections",
			metric.WithDescription("Connections in the pool by state"),
			metric.WithUnit("{connection}"))
		if err != nil {
			return nil, err
		}
		if _, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			stats := sqlDB.Stats()
			o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
			o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
			o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
			return nil
		}, connections); err != nil {
			return nil, err
		}
	}

	return &DBMetrics{
		queryDuration: queryDuration,
		slowQueries:   slowQueries,
		slowThreshold: slowThreshold,
	}, nil
}

// RecordQuery records one statement
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	if table == "" {
		table = "unknown"
	}
	m.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(operation), AttrDBTable.String(table))
	if m.slowThreshold > 0 && elapsed > m.slowThreshold {
		m.slowQueries.Inc(ctx, AttrDBTable.String(table))
	}
}

// InstrumentDB registers otelgorm spans and the query timing callbacks on db
func InstrumentDB(db *gorm.DB, cfg DBConfig, meters *MeterProvider, logger *zap.Logger) error {
	if cfg.TracingEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	var metrics *DBMetrics
	if cfg.MetricsEnabled && meters != nil && meters.IsEnabled() {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		metrics, err = NewDBMetrics(meters.Meter("db.client"), sqlDB, cfg.SlowThreshold)
		if err != nil {
			return err
		}
	}

	if !cfg.TracingEnabled && metrics == nil {
		logger.Debug("Database instrumentation disabled")
		return nil
	}
	if err := registerTimingCallbacks(db, &queryTimer{metrics: metrics, slowThreshold: cfg.SlowThreshold}); err != nil {
		return err
	}

	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.TracingEnabled),
		zap.Bool("metrics", metrics != nil),
		zap.Duration("slow_threshold", cfg.SlowThreshold))
	return nil
}

type queryStartKey struct{}

// queryTimer measures each statement, annotates its span and feeds DBMetrics
type queryTimer struct {
	metrics       *DBMetrics
	slowThreshold time.Duration
}

func (t *queryTimer) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *queryTimer) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	operation := statementOperation(db.Statement.SQL.String())

	if t.metrics != nil {
		t.metrics.RecordQuery(ctx, operation, db.Statement.Table, elapsed)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}
	if t.slowThreshold > 0 && elapsed > t.slowThreshold {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", t.slowThreshold.Milliseconds()),
		))
	}
}

func registerTimingCallbacks(db *gorm.DB, t *queryTimer) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("telemetry:before_create", t.before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("telemetry:after_create", t.after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("telemetry:before_query", t.before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("telemetry:after_query", t.after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("telemetry:before_update", t.before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("telemetry:after_update", t.after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", t.before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("telemetry:after_delete", t.after); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("telemetry:before_row", t.before); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("telemetry:after_row", t.after); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", t.before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("telemetry:after_raw", t.after)
}

func statementOperation(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}
