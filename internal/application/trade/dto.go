package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nvictorme/nikola-sub002/internal/domain/trade"
)

// PlaceOrderRequest represents a request to price and place an order
type PlaceOrderRequest struct {
	OrderNumber   string                  `json:"order_number" binding:"omitempty,max=50"`
	CustomerID    uuid.UUID               `json:"customer_id" binding:"required"`
	CurrencyMode  string                  `json:"currency_mode" binding:"required,currency_mode"`
	DiscountMode  string                  `json:"discount_mode" binding:"omitempty,discount_mode"`
	DiscountValue decimal.Decimal         `json:"discount_value"`
	PaymentMethod string                  `json:"payment_method" binding:"required,oneof=cash credit"`
	SupplierID    *uuid.UUID              `json:"supplier_id"`
	Lines         []PlaceOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PlaceOrderLineRequest is one line of a PlaceOrderRequest. A non-null
// override_price marks the line as manually priced.
type PlaceOrderLineRequest struct {
	ProductID     uuid.UUID        `json:"product_id" binding:"required"`
	Quantity      decimal.Decimal  `json:"quantity" binding:"required"`
	OverridePrice *decimal.Decimal `json:"override_price"`
	SerialNumber  string           `json:"serial_number" binding:"max=100"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	OrderNumber          string              `json:"order_number"`
	CustomerID           uuid.UUID           `json:"customer_id"`
	CurrencyMode         string              `json:"currency_mode"`
	ExchangeRateSnapshot decimal.Decimal     `json:"exchange_rate_snapshot"`
	DiscountMode         string              `json:"discount_mode,omitempty"`
	DiscountValue        decimal.Decimal     `json:"discount_value"`
	SupplierID           *uuid.UUID          `json:"supplier_id,omitempty"`
	PaymentMethod        string              `json:"payment_method"`
	Status               string              `json:"status"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	Lines                []OrderLineResponse `json:"lines"`
	CancelReason         string              `json:"cancel_reason,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	Version              int                 `json:"version"`
}

// OrderLineResponse represents an order line in API responses.
// Trace is only present right after pricing.
type OrderLineResponse struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"product_id"`
	Quantity       decimal.Decimal  `json:"quantity"`
	ManualOverride bool             `json:"manual_override"`
	OverridePrice  *decimal.Decimal `json:"override_price,omitempty"`
	SerialNumber   string           `json:"serial_number,omitempty"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	PriceRule      string           `json:"price_rule"`
	LineTotal      decimal.Decimal  `json:"line_total"`
	Trace          []string         `json:"trace,omitempty"`
}

// CancelOrderResponse reports the cancelled order and whether credit was
// released by this call
type CancelOrderResponse struct {
	Order            OrderResponse `json:"order"`
	CreditReleased   bool          `json:"credit_released"`
	AlreadyCancelled bool          `json:"already_cancelled"`
}

// ToOrderResponse converts a domain Order to OrderResponse. traces, when
// given, are keyed by line ID.
func ToOrderResponse(o *trade.Order, traces map[uuid.UUID][]string) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			ManualOverride: l.ManualOverride,
			OverridePrice:  l.OverridePrice,
			SerialNumber:   l.SerialNumber,
			UnitPrice:      l.UnitPrice,
			PriceRule:      string(l.PriceRule),
			LineTotal:      l.LineTotal,
			Trace:          traces[l.ID],
		}
	}

	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		CustomerID:           o.CustomerID,
		CurrencyMode:         string(o.CurrencyMode),
		ExchangeRateSnapshot: o.ExchangeRateSnapshot,
		DiscountMode:         string(o.DiscountMode),
		DiscountValue:        o.DiscountValue,
		SupplierID:           o.SupplierID,
		PaymentMethod:        string(o.PaymentMethod),
		Status:               string(o.Status),
		TotalAmount:          o.TotalAmount,
		Lines:                lines,
		CancelReason:         o.CancelReason,
		CancelledAt:          o.CancelledAt,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Version:              o.Version,
	}
}
