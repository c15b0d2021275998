package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Metric attribute keys.
var (
	AttrPriceRule      = attribute.Key("price_rule")
	AttrPricingClass   = attribute.Key("pricing_class")
	AttrErrorCode      = attribute.Key("error_code")
	AttrOutcome        = attribute.Key("outcome")
	AttrFallbackReason = attribute.Key("reason")
)

// Credit decision outcomes.
const (
	OutcomeAuthorized = "authorized"
	OutcomeDeclined   = "declined"
	OutcomeReleased   = "released"
	OutcomeReplayed   = "replayed"
	OutcomeRecorded   = "recorded"
	OutcomeFailed     = "failed"
)

// CreditExposureProvider reports the total outstanding credit across customers.
type CreditExposureProvider interface {
	OutstandingCredit(ctx context.Context) (decimal.Decimal, error)
}

// PricingMetrics tracks price resolution, credit decisions, factor table
// health and history writes. All methods are safe on a nil receiver.
type PricingMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	resolutions      *Counter
	resolutionErrors *Counter
	creditDecisions  *Counter
	creditReleases   *Counter
	creditAuthorized *Counter
	factorFallbacks  *Counter
	factorUpdates    *Counter
	historyWrites    *Counter
	orderDuration    *Histogram
	creditExposure   *FloatGauge

	exposure    CreditExposureProvider
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// PricingMetricsConfig holds configuration for pricing metrics.
type PricingMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	ExposureProvider CreditExposureProvider
}

// NewPricingMetrics registers all pricing instruments on the meter.
func NewPricingMetrics(cfg PricingMetricsConfig) (*PricingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PricingMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		exposure: cfg.ExposureProvider,
		stopChan: make(chan struct{}),
	}

	counters := []struct {
		dst        **Counter
		name, desc string
		unit       string
	}{
		{&pm.resolutions, "pricing_resolution_total", "Unit prices resolved, by winning rule", "{resolutions}"},
		{&pm.resolutionErrors, "pricing_resolution_errors_total", "Price resolutions that failed", "{errors}"},
		{&pm.creditDecisions, "pricing_credit_decision_total", "Credit authorization decisions", "{decisions}"},
		{&pm.creditReleases, "pricing_credit_release_total", "Credit release attempts", "{releases}"},
		{&pm.creditAuthorized, "pricing_credit_authorized_cents_total", "Credit authorized, in cents", "{cents}"},
		{&pm.factorFallbacks, "pricing_factor_fallback_total", "Factor table reads served from defaults", "{reads}"},
		{&pm.factorUpdates, "pricing_factor_update_total", "Factor table replacement attempts", "{updates}"},
		{&pm.historyWrites, "pricing_history_write_total", "Price history write attempts", "{writes}"},
	}
	var err error
	for _, c := range counters {
		if *c.dst, err = NewCounter(cfg.Meter, c.name, c.desc, c.unit); err != nil {
			return nil, err
		}
	}

	pm.orderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "pricing_order_place_duration_seconds",
		Description: "Time spent pricing and persisting an order",
		Unit:        "s",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	if err != nil {
		return nil, err
	}

	pm.creditExposure, err = NewFloatGauge(cfg.Meter,
		"pricing_credit_outstanding",
		"Total outstanding customer credit balance",
		"{currency}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordResolution counts a resolved unit price.
func (pm *PricingMetrics) RecordResolution(ctx context.Context, rule, class string) {
	if pm == nil {
		return
	}
	pm.resolutions.Inc(ctx, AttrPriceRule.String(rule), AttrPricingClass.String(class))
}

// RecordResolutionError counts a failed price resolution by error code.
func (pm *PricingMetrics) RecordResolutionError(ctx context.Context, code string) {
	if pm == nil {
		return
	}
	pm.resolutionErrors.Inc(ctx, AttrErrorCode.String(code))
}

// RecordCreditDecision counts an authorization outcome. Authorized amounts
// are accumulated in cents.
func (pm *PricingMetrics) RecordCreditDecision(ctx context.Context, authorized bool, amount decimal.Decimal) {
	if pm == nil {
		return
	}
	outcome := OutcomeDeclined
	if authorized {
		outcome = OutcomeAuthorized
		pm.creditAuthorized.Add(ctx, amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}
	pm.creditDecisions.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordCreditRelease counts a release; released is false for a replay.
func (pm *PricingMetrics) RecordCreditRelease(ctx context.Context, released bool) {
	if pm == nil {
		return
	}
	outcome := OutcomeReplayed
	if released {
		outcome = OutcomeReleased
	}
	pm.creditReleases.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordFactorFallback counts a factor table read served from defaults.
func (pm *PricingMetrics) RecordFactorFallback(ctx context.Context, reason string) {
	if pm == nil {
		return
	}
	pm.factorFallbacks.Inc(ctx, AttrFallbackReason.String(reason))
}

// RecordFactorUpdate counts a factor table replacement attempt.
func (pm *PricingMetrics) RecordFactorUpdate(ctx context.Context, err error) {
	if pm == nil {
		return
	}
	pm.factorUpdates.Inc(ctx, AttrOutcome.String(outcomeOf(err)))
}

// RecordHistoryWrite counts a price history write attempt.
func (pm *PricingMetrics) RecordHistoryWrite(ctx context.Context, err error) {
	if pm == nil {
		return
	}
	pm.historyWrites.Inc(ctx, AttrOutcome.String(outcomeOf(err)))
}

// RecordOrderDuration records how long placing an order took.
func (pm *PricingMetrics) RecordOrderDuration(ctx context.Context, d time.Duration) {
	if pm == nil {
		return
	}
	pm.orderDuration.RecordDuration(ctx, d)
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeRecorded
}

// StartPeriodicCollection samples outstanding credit every interval
// (default 5 minutes) until Stop is called or ctx is done.
func (pm *PricingMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if pm == nil || pm.exposure == nil {
		return
	}
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go pm.runPeriodicCollection(ctx, interval)
	})
}

func (pm *PricingMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.collectCreditExposure(ctx)

	for {
		select {
		case <-pm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.collectCreditExposure(ctx)
		}
	}
}

func (pm *PricingMetrics) collectCreditExposure(ctx context.Context) {
	total, err := pm.exposure.OutstandingCredit(ctx)
	if err != nil {
		pm.logger.Warn("Failed to collect outstanding credit", zap.Error(err))
		return
	}
	pm.creditExposure.Record(ctx, total.InexactFloat64())
}

// Stop stops periodic collection.
func (pm *PricingMetrics) Stop() {
	if pm == nil {
		return
	}
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPricingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
