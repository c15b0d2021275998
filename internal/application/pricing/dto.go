package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
)

// QuoteRequest prices a single product line without placing an order.
// Either CustomerID or PricingClass selects the tier; CustomerID wins when both are set.
type QuoteRequest struct {
	ProductID     uuid.UUID        `json:"product_id" binding:"required"`
	CustomerID    *uuid.UUID       `json:"customer_id"`
	PricingClass  string           `json:"pricing_class" binding:"omitempty,pricing_class"`
	CurrencyMode  string           `json:"currency_mode" binding:"required,currency_mode"`
	DiscountMode  string           `json:"discount_mode" binding:"omitempty,discount_mode"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	OverridePrice *decimal.Decimal `json:"override_price"`
	Quantity      *decimal.Decimal `json:"quantity"`
	AsOf          *time.Time       `json:"as_of"`
}

// QuoteResponse is the resolved unit price with the steps that produced it
type QuoteResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	PricingClass string          `json:"pricing_class"`
	CurrencyMode string          `json:"currency_mode"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BasePrice    decimal.Decimal `json:"base_price"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Rule         string          `json:"rule"`
	Trace        []string        `json:"trace"`
	Quantity     decimal.Decimal `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Credit       *CreditPreview  `json:"credit,omitempty"`
	AsOf         time.Time       `json:"as_of"`
}

// CreditPreview tells whether the quoted line total would fit the
// customer's credit right now. Nothing is reserved.
type CreditPreview struct {
	Enabled      bool            `json:"enabled"`
	Available    decimal.Decimal `json:"available"`
	Authorizable bool            `json:"authorizable"`
	Reason       string          `json:"reason,omitempty"`
}

// FactorTableDTO is the wire shape of the factor table
type FactorTableDTO struct {
	Factores map[string]decimal.Decimal `json:"factores" binding:"required"`
}

// ToFactorTableDTO converts a FactorTable for API responses
func ToFactorTableDTO(t pricing.FactorTable) FactorTableDTO {
	out := make(map[string]decimal.Decimal, len(t))
	for k, v := range t {
		out[string(k)] = v
	}
	return FactorTableDTO{Factores: out}
}

// ToDomain converts the request body into a FactorTable. Keys are not
// checked here; FactorTable.Validate rejects unknown ones.
func (d FactorTableDTO) ToDomain() pricing.FactorTable {
	t := make(pricing.FactorTable, len(d.Factores))
	for k, v := range d.Factores {
		t[pricing.FactorKey(k)] = v
	}
	return t
}
