package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestDBMetrics_RecordsStatements(t *testing.T) {
	reader, provider := newTestMeter(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	metrics, err := telemetry.NewDBMetrics(provider.Meter("db.client"), sqlDB, telemetry.DBMetricsConfig{Enabled: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, db.Use(metrics))
	defer metrics.Stop()

	require.NoError(t, db.AutoMigrate(&widget{}))
	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)

	var found widget
	require.NoError(t, db.WithContext(ctx).First(&found).Error)

	rm := collect(t, reader)
	assert.GreaterOrEqual(t, counterValue(t, rm, "db_query_total", telemetry.AttrDBOperation.String("INSERT")), int64(1))
	assert.GreaterOrEqual(t, counterValue(t, rm, "db_query_total", telemetry.AttrDBOperation.String("SELECT")), int64(1))

	m, ok := findMetric(rm, "db_pool_connections")
	require.True(t, ok)
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	maxSet := attribute.NewSet(telemetry.AttrDBState.String("max"))
	for _, dp := range gauge.DataPoints {
		if dp.Attributes.Equals(&maxSet) {
			assert.Equal(t, int64(1), dp.Value)
		}
	}
}

func TestDBTracingPlugin_DisabledIsNoop(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{}, zaptest.NewLogger(t))
	assert.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_MarksFailedStatements(t *testing.T) {
	recorder := installRecorder(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := telemetry.DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	require.NoError(t, telemetry.NewDBTracingPlugin(cfg, zaptest.NewLogger(t)).RegisterOtelGorm(db))

	err = db.WithContext(context.Background()).Exec("SELECT * FROM missing_table").Error
	require.Error(t, err)

	var sawError bool
	for _, span := range recorder.Ended() {
		if span.Status().Code.String() == "Error" {
			sawError = true
		}
	}
	assert.True(t, sawError)
}
