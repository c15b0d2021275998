package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductPrices is the pricing view of a catalog product
type ProductPrices struct {
	ProductID uuid.UUID
	General   *decimal.Decimal
	Installer *decimal.Decimal
	Wholesale *decimal.Decimal
	Offer     OfferTerms
}

// TierPrice returns the base price for a pricing class, or nil when the
// catalog has no price for that tier.
func (p ProductPrices) TierPrice(c PricingClass) *decimal.Decimal {
	switch c {
	case PricingClassInstaller:
		return p.Installer
	case PricingClassWholesaler:
		return p.Wholesale
	case PricingClassGeneral:
		return p.General
	}
	return nil
}

// LineTerms carries the operator override of an order line
type LineTerms struct {
	ManualOverride bool
	OverridePrice  *decimal.Decimal
}

// OrderTerms carries the order-level inputs shared by every line
type OrderTerms struct {
	CurrencyMode CurrencyMode
	// ExchangeRateSnapshot is the currency multiplier captured when the
	// order was created. Zero means not yet captured.
	ExchangeRateSnapshot decimal.Decimal
	DiscountMode         DiscountMode
	// DiscountValue is an amount for Absolute and a fraction in [0,1]
	// for Percentage.
	DiscountValue decimal.Decimal
	PlacedAt      time.Time
}

// Validate checks the order terms before any line is priced
func (o OrderTerms) Validate() error {
	if !o.CurrencyMode.IsValid() {
		return invalidOrderTerms("unknown currency mode %q", o.CurrencyMode)
	}
	if o.ExchangeRateSnapshot.IsNegative() {
		return invalidOrderTerms("exchange rate snapshot must not be negative")
	}
	if o.DiscountValue.IsNegative() {
		return invalidOrderTerms("discount must not be negative")
	}
	switch o.DiscountMode {
	case "":
		if !o.DiscountValue.IsZero() {
			return invalidOrderTerms("discount value given without a discount mode")
		}
	case DiscountAbsolute:
	case DiscountPercentage:
		if o.DiscountValue.GreaterThan(decimal.NewFromInt(1)) {
			return invalidOrderTerms("percentage discount must be a fraction between 0 and 1")
		}
	default:
		return invalidOrderTerms("unknown discount mode %q", o.DiscountMode)
	}
	return nil
}

// CurrencyFactor returns the snapshot when captured, otherwise the
// factor currently configured for the order's currency mode.
func (o OrderTerms) CurrencyFactor(factors FactorTable) decimal.Decimal {
	if o.ExchangeRateSnapshot.IsPositive() {
		return o.ExchangeRateSnapshot
	}
	return factors.ForCurrency(o.CurrencyMode)
}

// PricingContext is everything needed to price one order line
type PricingContext struct {
	Product ProductPrices
	Line    LineTerms
	Class   PricingClass
	Order   OrderTerms
}

// ResolvedPrice is the unit price of one line with the rule that fixed it.
// Unrounded is the exact result of the chain; UnitPrice is Unrounded
// rounded to cents. Unrounded scales exactly with every factor, UnitPrice
// only to within a cent.
type ResolvedPrice struct {
	UnitPrice decimal.Decimal
	Unrounded decimal.Decimal
	Rule      Rule
	BasePrice decimal.Decimal
	Factor    decimal.Decimal
	Trace     []string
}

// PriceResolver resolves unit prices. It holds no mutable state and is
// safe for concurrent use.
type PriceResolver struct {
	offers *OfferEvaluator
}

// NewPriceResolver creates a resolver using the given offer evaluator
func NewPriceResolver(offers *OfferEvaluator) *PriceResolver {
	if offers == nil {
		offers = NewOfferEvaluator()
	}
	return &PriceResolver{offers: offers}
}

// Resolve applies, in order: manual override, tier price with class
// factor, active offer, currency factor and order discount. Intermediate
// amounts are kept exact and the unit price is rounded once at the end;
// trace entries show intermediate amounts formatted to cents.
func (r *PriceResolver) Resolve(pc PricingContext, factors FactorTable) (ResolvedPrice, error) {
	if pc.Line.ManualOverride {
		if pc.Line.OverridePrice == nil {
			return ResolvedPrice{}, ErrMissingOverridePrice
		}
		if pc.Line.OverridePrice.IsNegative() {
			return ResolvedPrice{}, shared.NewDomainError(CodeMissingOverridePrice, "override price must not be negative")
		}
		price := RoundMoney(*pc.Line.OverridePrice)
		return ResolvedPrice{
			UnitPrice: price,
			Unrounded: *pc.Line.OverridePrice,
			Rule:      RuleManual,
			BasePrice: price,
			Trace:     []string{"manual_override:" + FormatMoney(price)},
		}, nil
	}

	if !pc.Class.IsValid() {
		return ResolvedPrice{}, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("unknown pricing class %q", pc.Class))
	}
	if err := pc.Order.Validate(); err != nil {
		return ResolvedPrice{}, err
	}

	tier := pc.Product.TierPrice(pc.Class)
	if tier == nil {
		return ResolvedPrice{}, missingTierPrice(pc.Class)
	}

	result := ResolvedPrice{Rule: RuleTier}
	classFactor := factors.ForClass(pc.Class)
	price := tier.Mul(classFactor)
	result.Trace = append(result.Trace,
		fmt.Sprintf("tier_%s:%s", pc.Class.TierName(), FormatMoney(*tier)),
		fmt.Sprintf("class_factor:%s=%s", classFactor.String(), FormatMoney(price)),
	)

	if r.offers.IsActive(pc.Product, pc.Order.PlacedAt) {
		price = *pc.Product.Offer.Price
		result.Rule = RuleOffer
		result.Trace = append(result.Trace, "offer:"+FormatMoney(price))
	}
	result.BasePrice = RoundMoney(price)

	currencyFactor := pc.Order.CurrencyFactor(factors)
	price = price.Mul(currencyFactor)
	result.Factor = currencyFactor
	result.Trace = append(result.Trace,
		fmt.Sprintf("currency_%s:%s=%s", pc.Order.CurrencyMode, currencyFactor.String(), FormatMoney(price)))

	switch pc.Order.DiscountMode {
	case DiscountAbsolute:
		price = decimal.Max(price.Sub(pc.Order.DiscountValue), decimal.Zero)
		result.Trace = append(result.Trace,
			fmt.Sprintf("discount_absolute:%s=%s", pc.Order.DiscountValue.String(), FormatMoney(price)))
	case DiscountPercentage:
		price = price.Mul(decimal.NewFromInt(1).Sub(pc.Order.DiscountValue))
		result.Trace = append(result.Trace,
			fmt.Sprintf("discount_percentage:%s=%s", pc.Order.DiscountValue.String(), FormatMoney(price)))
	}

	result.Unrounded = price
	result.UnitPrice = RoundMoney(price)
	return result, nil
}
