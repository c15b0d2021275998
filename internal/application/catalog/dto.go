package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
)

// TierPricesRequest replaces all three tier prices. A null tier clears it.
type TierPricesRequest struct {
	General   *decimal.Decimal `json:"general"`
	Installer *decimal.Decimal `json:"installer"`
	Wholesale *decimal.Decimal `json:"wholesale"`
}

// OfferRequest replaces the promotional offer. Dates are YYYY-MM-DD.
type OfferRequest struct {
	Active bool             `json:"active"`
	Price  *decimal.Decimal `json:"price"`
	Start  string           `json:"start" binding:"omitempty,datetime=2006-01-02"`
	End    string           `json:"end" binding:"omitempty,datetime=2006-01-02"`
}

// UpdatePricingRequest represents a product pricing mutation. Omitted
// sections are left unchanged. Version, when set, must match the stored
// version.
type UpdatePricingRequest struct {
	Tiers   *TierPricesRequest `json:"tiers"`
	Cost    *decimal.Decimal   `json:"cost"`
	Offer   *OfferRequest      `json:"offer"`
	Version *int               `json:"version" binding:"omitempty,min=1"`
}

// ToChange converts the request to a domain PricingChange
func (r UpdatePricingRequest) ToChange() catalog.PricingChange {
	var change catalog.PricingChange
	if r.Tiers != nil {
		change.Tiers = &catalog.TierPrices{
			General:   r.Tiers.General,
			Installer: r.Tiers.Installer,
			Wholesale: r.Tiers.Wholesale,
		}
	}
	change.Cost = r.Cost
	if r.Offer != nil {
		change.Offer = &catalog.Offer{
			Active: r.Offer.Active,
			Price:  r.Offer.Price,
			Start:  r.Offer.Start,
			End:    r.Offer.End,
		}
	}
	return change
}

// ProductPricingResponse represents a product's pricing in API responses
type ProductPricingResponse struct {
	ID              uuid.UUID        `json:"id"`
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	PriceGeneral    *decimal.Decimal `json:"price_general"`
	PriceInstaller  *decimal.Decimal `json:"price_installer"`
	PriceWholesale  *decimal.Decimal `json:"price_wholesale"`
	Cost            decimal.Decimal  `json:"cost"`
	OfferActive     bool             `json:"offer_active"`
	OfferPrice      *decimal.Decimal `json:"offer_price"`
	OfferStart      string           `json:"offer_start"`
	OfferEnd        string           `json:"offer_end"`
	Version         int              `json:"version"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Changed         bool             `json:"changed"`
	HistoryRecorded bool             `json:"history_recorded"`
}

// ToProductPricingResponse converts a domain Product to ProductPricingResponse
func ToProductPricingResponse(p *catalog.Product) ProductPricingResponse {
	return ProductPricingResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		PriceGeneral:   p.PriceGeneral,
		PriceInstaller: p.PriceInstaller,
		PriceWholesale: p.PriceWholesale,
		Cost:           p.Cost,
		OfferActive:    p.OfferActive,
		OfferPrice:     p.OfferPrice,
		OfferStart:     p.OfferStart,
		OfferEnd:       p.OfferEnd,
		Version:        p.Version,
		UpdatedAt:      p.UpdatedAt,
	}
}

// PriceHistoryEntryResponse represents a price history entry in API responses
type PriceHistoryEntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`
}

// ToPriceHistoryResponses converts history entries for API responses
func ToPriceHistoryResponses(entries []catalog.PriceHistoryEntry) []PriceHistoryEntryResponse {
	out := make([]PriceHistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = PriceHistoryEntryResponse{
			ID:        e.ID,
			ProductID: e.ProductID,
			Cost:      e.Cost,
			Price:     e.Price,
			CreatedAt: e.CreatedAt,
			DeletedAt: e.DeletedAt,
		}
	}
	return out
}
