package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Database metric attribute keys.
var (
	AttrDBOperation = attribute.Key("db_operation")
	AttrDBTable     = attribute.Key("db_table")
	AttrDBState     = attribute.Key("state")
)

// DBDurationBuckets are histogram boundaries for query latency in seconds.
var DBDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// DBMetricsConfig holds configuration for database metrics collection.
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration // default 200ms
}

// DBMetrics records query counts, latency and connection pool state.
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	registration   metric.Registration

	config DBMetricsConfig
	logger *zap.Logger
}

// NewDBMetrics creates the query instruments and, when sqlDB is non-nil,
// observable gauges for the connection pool.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold == 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}

	m := &DBMetrics{config: cfg, logger: logger}
	var err error

	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation type", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Database queries slower than the threshold", "{query}"); err != nil {
		return nil, err
	}
	m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Buckets:     DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	if sqlDB != nil {
		pool, err := meter.Int64ObservableGauge("db_pool_connections",
			metric.WithDescription("Number of connections in the pool by state"),
			metric.WithUnit("{connection}"),
		)
		if err != nil {
			return nil, err
		}
		m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			stats := sqlDB.Stats()
			o.ObserveInt64(pool, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
			o.ObserveInt64(pool, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
			o.ObserveInt64(pool, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
			return nil
		}, pool)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordQuery records one finished statement.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// Stop unregisters the pool callback.
func (m *DBMetrics) Stop() {
	if m.registration != nil {
		if err := m.registration.Unregister(); err != nil {
			m.logger.Warn("Failed to unregister pool metrics callback", zap.Error(err))
		}
	}
}

// Name implements gorm.Plugin.
func (m *DBMetrics) Name() string {
	return "pricing:db_metrics"
}

// Initialize implements gorm.Plugin.
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	return registerAround(db, "db_metrics", markQueryStart, func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		elapsed, ok := queryElapsed(ctx)
		if !ok {
			return
		}
		m.RecordQuery(ctx, detectOperationType(db.Statement.SQL.String()), db.Statement.Table, elapsed)
	})
}

func detectOperationType(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics creates database metrics and installs them on db.
// It returns nil when metrics are disabled.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || meterProvider == nil || !meterProvider.IsEnabled() {
		return nil, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics, err := NewDBMetrics(meterProvider.Meter("db.client"), sqlDB, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Use(metrics); err != nil {
		return nil, err
	}

	logger.Info("Database metrics registered", zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold))
	return metrics, nil
}
