package catalog

import (
	"strings"
	"time"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a catalog item with its tier prices and promotional offer.
// It is the aggregate root for product pricing.
type Product struct {
	shared.BaseAggregateRoot
	Code           string
	Name           string
	PriceGeneral   *decimal.Decimal // nil means the tier has no price
	PriceInstaller *decimal.Decimal
	PriceWholesale *decimal.Decimal
	Cost           decimal.Decimal
	OfferPrice     *decimal.Decimal
	OfferActive    bool
	OfferStart     string // stored as text, YYYY-MM-DD
	OfferEnd       string
	MinStock       int
	Position       int
}

// NewProduct creates a new product with no prices set
func NewProduct(code, name string) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Cost:              decimal.Zero,
	}, nil
}

// Prices returns the pricing view used by the resolver
func (p *Product) Prices() pricing.ProductPrices {
	return pricing.ProductPrices{
		ProductID: p.ID,
		General:   p.PriceGeneral,
		Installer: p.PriceInstaller,
		Wholesale: p.PriceWholesale,
		Offer: pricing.OfferTerms{
			Active: p.OfferActive,
			Price:  p.OfferPrice,
			Start:  p.OfferStart,
			End:    p.OfferEnd,
		},
	}
}

// ReferencePrice is the price recorded in the price history: the General
// tier price, or zero when the tier has no price.
func (p *Product) ReferencePrice() decimal.Decimal {
	if p.PriceGeneral == nil {
		return decimal.Zero
	}
	return *p.PriceGeneral
}

// TierPrices holds the three tier base prices
type TierPrices struct {
	General   *decimal.Decimal
	Installer *decimal.Decimal
	Wholesale *decimal.Decimal
}

// Offer holds promotional terms to apply to a product
type Offer struct {
	Active bool
	Price  *decimal.Decimal
	Start  string
	End    string
}

// PricingChange describes a pricing mutation. Nil fields are left as is.
type PricingChange struct {
	Tiers *TierPrices
	Cost  *decimal.Decimal
	Offer *Offer
}

// ApplyPricing applies a pricing mutation as one version step. It returns
// true when cost or any price changed, in which case a
// ProductPriceChangedEvent is recorded on the aggregate.
func (p *Product) ApplyPricing(change PricingChange, loc *time.Location) (bool, error) {
	if change.Tiers != nil {
		for _, d := range []*decimal.Decimal{change.Tiers.General, change.Tiers.Installer, change.Tiers.Wholesale} {
			if d != nil && d.IsNegative() {
				return false, shared.NewDomainError("INVALID_PRICE", "Tier prices cannot be negative")
			}
		}
	}
	if change.Cost != nil && change.Cost.IsNegative() {
		return false, shared.NewDomainError("INVALID_PRICE", "Cost cannot be negative")
	}
	if change.Offer != nil {
		err := pricing.ValidateOffer(pricing.OfferTerms{
			Active: change.Offer.Active,
			Price:  change.Offer.Price,
			Start:  change.Offer.Start,
			End:    change.Offer.End,
		}, loc)
		if err != nil {
			return false, err
		}
	}

	oldCost := p.Cost
	oldPrice := p.ReferencePrice()
	changed := false

	if change.Tiers != nil {
		if !sameAmount(p.PriceGeneral, change.Tiers.General) ||
			!sameAmount(p.PriceInstaller, change.Tiers.Installer) ||
			!sameAmount(p.PriceWholesale, change.Tiers.Wholesale) {
			changed = true
		}
		p.PriceGeneral = change.Tiers.General
		p.PriceInstaller = change.Tiers.Installer
		p.PriceWholesale = change.Tiers.Wholesale
	}
	if change.Cost != nil {
		if !p.Cost.Equal(*change.Cost) {
			changed = true
		}
		p.Cost = *change.Cost
	}
	if change.Offer != nil {
		if p.OfferActive != change.Offer.Active ||
			!sameAmount(p.OfferPrice, change.Offer.Price) ||
			p.OfferStart != change.Offer.Start ||
			p.OfferEnd != change.Offer.End {
			changed = true
		}
		p.OfferActive = change.Offer.Active
		p.OfferPrice = change.Offer.Price
		p.OfferStart = change.Offer.Start
		p.OfferEnd = change.Offer.End
	}

	if !changed {
		return false, nil
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldCost, oldPrice))

	return true, nil
}

func sameAmount(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
