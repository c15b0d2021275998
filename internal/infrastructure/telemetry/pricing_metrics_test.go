package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	if !ok {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestNewPricingMetrics_RequiresMeter(t *testing.T) {
	_, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestPricingMetrics_Counters(t *testing.T) {
	ctx := context.Background()
	reader, provider := newTestMeter(t)

	pm, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	pm.RecordResolution(ctx, "tier", "Installer")
	pm.RecordResolution(ctx, "tier", "Installer")
	pm.RecordResolution(ctx, "offer", "General")
	pm.RecordResolutionError(ctx, "NO_BASE_PRICE")
	pm.RecordCreditDecision(ctx, true, decimal.RequireFromString("12.345"))
	pm.RecordCreditDecision(ctx, false, decimal.RequireFromString("99"))
	pm.RecordCreditRelease(ctx, true)
	pm.RecordCreditRelease(ctx, false)
	pm.RecordFactorFallback(ctx, "miss")
	pm.RecordFactorUpdate(ctx, nil)
	pm.RecordHistoryWrite(ctx, errors.New("boom"))
	pm.RecordOrderDuration(ctx, 30*time.Millisecond)

	rm := collect(t, reader)

	assert.Equal(t, int64(2), counterValue(t, rm, "pricing_resolution_total",
		telemetry.AttrPriceRule.String("tier"), telemetry.AttrPricingClass.String("Installer")))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_resolution_total",
		telemetry.AttrPriceRule.String("offer"), telemetry.AttrPricingClass.String("General")))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_resolution_errors_total",
		telemetry.AttrErrorCode.String("NO_BASE_PRICE")))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_credit_decision_total",
		telemetry.AttrOutcome.String(telemetry.OutcomeAuthorized)))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_credit_decision_total",
		telemetry.AttrOutcome.String(telemetry.OutcomeDeclined)))
	assert.Equal(t, int64(1235), counterValue(t, rm, "pricing_credit_authorized_cents_total"))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_credit_release_total",
		telemetry.AttrOutcome.String(telemetry.OutcomeReplayed)))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_factor_fallback_total",
		telemetry.AttrFallbackReason.String("miss")))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_factor_update_total",
		telemetry.AttrOutcome.String(telemetry.OutcomeRecorded)))
	assert.Equal(t, int64(1), counterValue(t, rm, "pricing_history_write_total",
		telemetry.AttrOutcome.String(telemetry.OutcomeFailed)))

	m, ok := findMetric(rm, "pricing_order_place_duration_seconds")
	require.True(t, ok)
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestPricingMetrics_NilReceiver(t *testing.T) {
	var pm *telemetry.PricingMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		pm.RecordResolution(ctx, "tier", "General")
		pm.RecordResolutionError(ctx, "X")
		pm.RecordCreditDecision(ctx, true, decimal.NewFromInt(1))
		pm.RecordCreditRelease(ctx, true)
		pm.RecordFactorFallback(ctx, "error")
		pm.RecordFactorUpdate(ctx, nil)
		pm.RecordHistoryWrite(ctx, nil)
		pm.RecordOrderDuration(ctx, time.Second)
		pm.StartPeriodicCollection(ctx, time.Second)
		pm.Stop()
	})
}

type stubExposure struct {
	calls atomic.Int32
	total decimal.Decimal
}

func (s *stubExposure) OutstandingCredit(context.Context) (decimal.Decimal, error) {
	s.calls.Add(1)
	return s.total, nil
}

func TestPricingMetrics_PeriodicCreditExposure(t *testing.T) {
	reader, provider := newTestMeter(t)
	exposure := &stubExposure{total: decimal.RequireFromString("1500.50")}

	pm, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{
		Meter:            provider.Meter("test"),
		ExposureProvider: exposure,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pm.StartPeriodicCollection(ctx, time.Hour)
	defer pm.Stop()

	require.Eventually(t, func() bool { return exposure.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)

	// the first sample is recorded right after the provider call returns
	require.Eventually(t, func() bool {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			return false
		}
		m, ok := findMetric(rm, "pricing_credit_outstanding")
		if !ok {
			return false
		}
		gauge, ok := m.Data.(metricdata.Gauge[float64])
		return ok && len(gauge.DataPoints) == 1 && gauge.DataPoints[0].Value == 1500.5
	}, time.Second, 10*time.Millisecond)
}
