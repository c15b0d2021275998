package catalog

import (
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type of Product events
const AggregateTypeProduct = "Product"

// EventTypeProductPriceChanged is emitted when cost or any price changes
const EventTypeProductPriceChanged = "ProductPriceChanged"

// ProductPriceChangedEvent carries the cost and reference price before and
// after a pricing mutation.
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	OldCost   decimal.Decimal `json:"old_cost"`
	NewCost   decimal.Decimal `json:"new_cost"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(product *Product, oldCost, oldPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		OldCost:         oldCost,
		NewCost:         product.Cost,
		OldPrice:        oldPrice,
		NewPrice:        product.ReferencePrice(),
	}
}

// ChangesHistory reports whether the cost or the reference price moved.
// Changes confined to the Installer or Wholesale tiers or to the offer
// leave the history untouched.
func (e *ProductPriceChangedEvent) ChangesHistory() bool {
	return !e.OldCost.Equal(e.NewCost) || !e.OldPrice.Equal(e.NewPrice)
}
