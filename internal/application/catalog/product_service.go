package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/logger"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

// ProductPricingService updates product prices and maintains their history
type ProductPricingService struct {
	products catalog.ProductRepository
	history  catalog.PriceHistoryRepository
	metrics  *telemetry.PricingMetrics
	logger   *zap.Logger
	location *time.Location
}

// NewProductPricingService creates a new ProductPricingService. loc is the
// zone offer dates are validated in; nil means UTC.
func NewProductPricingService(
	products catalog.ProductRepository,
	history catalog.PriceHistoryRepository,
	loc *time.Location,
	log *zap.Logger,
) *ProductPricingService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductPricingService{
		products: products,
		history:  history,
		location: loc,
		logger:   log,
	}
}

// SetMetrics sets the pricing metrics recorder
func (s *ProductPricingService) SetMetrics(metrics *telemetry.PricingMetrics) {
	s.metrics = metrics
}

// UpdatePricing applies a pricing mutation under optimistic locking. When
// the cost or the General tier price changed, one history entry is appended
// after the update is stored. A failed history write is logged and does not fail the update.
func (s *ProductPricingService) UpdatePricing(ctx context.Context, productID uuid.UUID, req UpdatePricingRequest) (*ProductPricingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product_pricing", "update",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()),
	)
	defer span.End()
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("product_id", productID.String()))

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Version != nil && *req.Version != product.Version {
		err := shared.NewDomainError(shared.ErrConcurrencyConflict.Code,
			fmt.Sprintf("Product version is %d, request was based on %d", product.Version, *req.Version))
		telemetry.RecordError(span, err)
		return nil, err
	}

	changed, err := product.ApplyPricing(req.ToChange(), s.location)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToProductPricingResponse(product)
	if !changed {
		telemetry.SetOK(span)
		return &resp, nil
	}

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp.Changed = true
	resp.HistoryRecorded = s.recordHistory(ctx, log, product)

	log.Info("Product pricing updated",
		zap.String("reference_price", pricing.FormatMoney(product.ReferencePrice())),
		zap.String("cost", pricing.FormatMoney(product.Cost)),
		zap.Int("version", product.Version),
	)
	telemetry.SetOK(span)
	return &resp, nil
}

// recordHistory appends one entry per price change event that moved the
// cost or the reference price, and reports whether any entry was written
// with none failing. The product is already stored, so failures are
// reported but never returned.
func (s *ProductPricingService) recordHistory(ctx context.Context, log *zap.Logger, product *catalog.Product) bool {
	defer product.ClearDomainEvents()

	written, failed := 0, 0
	for _, event := range product.GetDomainEvents() {
		changed, ok := event.(*catalog.ProductPriceChangedEvent)
		if !ok || !changed.ChangesHistory() {
			continue
		}
		err := s.history.Record(ctx, changed.ProductID, changed.NewCost, changed.NewPrice)
		s.metrics.RecordHistoryWrite(ctx, err)
		if err != nil {
			failed++
			log.Error("Failed to record price history",
				zap.String("cost", pricing.FormatMoney(changed.NewCost)),
				zap.String("price", pricing.FormatMoney(changed.NewPrice)),
				zap.Error(err),
			)
			continue
		}
		written++
	}
	return written > 0 && failed == 0
}

// History lists a product's price history, oldest first
func (s *ProductPricingService) History(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]PriceHistoryEntryResponse, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByProduct(ctx, productID, includeDeleted)
	if err != nil {
		return nil, err
	}
	return ToPriceHistoryResponses(entries), nil
}

// DeleteHistoryEntry soft-deletes a history entry; its values stay readable
func (s *ProductPricingService) DeleteHistoryEntry(ctx context.Context, entryID uuid.UUID) error {
	if err := s.history.SoftDelete(ctx, entryID); err != nil {
		return err
	}
	logger.FromContextOr(ctx, s.logger).Info("Price history entry deleted",
		zap.String("entry_id", entryID.String()),
	)
	return nil
}
