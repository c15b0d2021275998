package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "UPDATE customers SET balance = balance + 10", 1 }

	t.Run("error", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn)
		gl.Trace(context.Background(), time.Now(), query, errors.New("deadlock"))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	})

	t.Run("record not found ignored", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn)
		gl.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow query", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("normal query at info", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Info)
		ctx := context.WithValue(context.Background(), OrderIDKey, "order-1")
		gl.Trace(ctx, time.Now(), query, nil)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "order-1", logs.All()[0].ContextMap()["order_id"])
	})

	t.Run("silent", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), query, errors.New("x"))
		assert.Equal(t, 0, logs.Len())
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Warn)
	changed := gl.LogMode(gormlogger.Info).(*GormLogger)

	assert.Equal(t, gormlogger.Info, changed.logLevel)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	var _ gormlogger.Interface = (*GormLogger)(nil)
}
