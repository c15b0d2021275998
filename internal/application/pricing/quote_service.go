package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/logger"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

// QuoteService resolves the price of one line without persisting anything
type QuoteService struct {
	products  catalog.ProductRepository
	customers partner.CustomerRepository
	factors   pricing.FactorStore
	resolver  *pricing.PriceResolver
	metrics   *telemetry.PricingMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	products catalog.ProductRepository,
	customers partner.CustomerRepository,
	factors pricing.FactorStore,
	resolver *pricing.PriceResolver,
	log *zap.Logger,
) *QuoteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuoteService{
		products:  products,
		customers: customers,
		factors:   factors,
		resolver:  resolver,
		logger:    log,
		now:       time.Now,
	}
}

// SetMetrics sets the pricing metrics recorder
func (s *QuoteService) SetMetrics(metrics *telemetry.PricingMetrics) {
	s.metrics = metrics
}

// Quote resolves the unit price a line would get if ordered at AsOf
// (now when unset), with the current factor table.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pricing", "quote",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, req.ProductID.String()),
	)
	defer span.End()

	customer, class, err := s.pricingClass(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	quantity, err := quoteQuantity(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	terms, err := quoteTerms(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	factors := s.factors.Get(ctx)
	terms.ExchangeRateSnapshot = factors.ForCurrency(terms.CurrencyMode)
	terms.PlacedAt = s.now()
	if req.AsOf != nil {
		terms.PlacedAt = *req.AsOf
	}

	pc := pricing.PricingContext{
		Product: product.Prices(),
		Line: pricing.LineTerms{
			ManualOverride: req.OverridePrice != nil,
			OverridePrice:  req.OverridePrice,
		},
		Class: class,
		Order: terms,
	}

	var resolved pricing.ResolvedPrice
	telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelOperation: "price.quote"}, func(context.Context) {
		resolved, err = s.resolver.Resolve(pc, factors)
	})
	if err != nil {
		if de, ok := shared.AsDomainError(err); ok {
			s.metrics.RecordResolutionError(ctx, de.Code)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordResolution(ctx, string(resolved.Rule), string(class))

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPricingClass, string(class),
		telemetry.SpanAttrPriceRule, string(resolved.Rule),
	)
	telemetry.SetOK(span)
	logger.FromContextOr(ctx, s.logger).Debug("Price quoted",
		zap.String("product_id", product.ID.String()),
		zap.String("rule", string(resolved.Rule)),
		zap.String("unit_price", pricing.FormatMoney(resolved.UnitPrice)),
	)

	lineTotal := pricing.RoundMoney(resolved.UnitPrice.Mul(quantity))
	resp := &QuoteResponse{
		ProductID:    product.ID,
		PricingClass: string(class),
		CurrencyMode: string(terms.CurrencyMode),
		ExchangeRate: terms.ExchangeRateSnapshot,
		BasePrice:    resolved.BasePrice,
		UnitPrice:    resolved.UnitPrice,
		Rule:         string(resolved.Rule),
		Trace:        resolved.Trace,
		Quantity:     quantity,
		LineTotal:    lineTotal,
		AsOf:         terms.PlacedAt,
	}
	if customer != nil {
		resp.Credit = creditPreview(customer, lineTotal)
	}
	return resp, nil
}

// pricingClass returns the customer, when one is named, and the class to
// price at
func (s *QuoteService) pricingClass(ctx context.Context, req QuoteRequest) (*partner.Customer, pricing.PricingClass, error) {
	if req.CustomerID != nil {
		customer, err := s.customers.FindByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, "", err
		}
		return customer, customer.PricingClass, nil
	}
	if req.PricingClass == "" {
		return nil, "", shared.NewDomainError(shared.ErrInvalidInput.Code, "customer_id or pricing_class is required")
	}
	class, err := pricing.ParsePricingClass(req.PricingClass)
	if err != nil {
		return nil, "", shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}
	return nil, class, nil
}

func quoteQuantity(req QuoteRequest) (decimal.Decimal, error) {
	if req.Quantity == nil {
		return decimal.NewFromInt(1), nil
	}
	if !req.Quantity.IsPositive() {
		return decimal.Zero, shared.NewDomainError(shared.ErrInvalidInput.Code, "quantity must be positive")
	}
	return *req.Quantity, nil
}

// creditPreview reads the balance as loaded; the ledger decides again when
// the order is placed
func creditPreview(c *partner.Customer, amount decimal.Decimal) *CreditPreview {
	decision := c.CanAuthorize(amount)
	return &CreditPreview{
		Enabled:      c.CreditEnabled,
		Available:    c.AvailableCredit(),
		Authorizable: decision.Authorized,
		Reason:       decision.Reason,
	}
}

func quoteTerms(req QuoteRequest) (pricing.OrderTerms, error) {
	mode, err := pricing.ParseCurrencyMode(req.CurrencyMode)
	if err != nil {
		return pricing.OrderTerms{}, shared.NewDomainError(pricing.CodeInvalidOrderTerms, err.Error())
	}
	terms := pricing.OrderTerms{CurrencyMode: mode, DiscountValue: req.DiscountValue}
	if req.DiscountMode != "" {
		if terms.DiscountMode, err = pricing.ParseDiscountMode(req.DiscountMode); err != nil {
			return pricing.OrderTerms{}, shared.NewDomainError(pricing.CodeInvalidOrderTerms, err.Error())
		}
	}
	if err := terms.Validate(); err != nil {
		return pricing.OrderTerms{}, err
	}
	return terms, nil
}
