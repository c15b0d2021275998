package trade

import (
	"fmt"
	"time"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusPlaced || s == OrderStatusCancelled
}

// PaymentMethod represents how an order is settled
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCredit PaymentMethod = "credit"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCredit
}

// OrderLine is one product line of an order. When ManualOverride is set,
// OverridePrice is authoritative and automatic resolution is skipped.
type OrderLine struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	Quantity       decimal.Decimal
	ManualOverride bool
	OverridePrice  *decimal.Decimal
	SerialNumber   string
	UnitPrice      decimal.Decimal
	PriceRule      pricing.Rule
	LineTotal      decimal.Decimal
	CreatedAt      time.Time
}

// NewOrderLine creates an unpriced order line. A non-nil overridePrice
// marks the line as manually priced.
func NewOrderLine(productID uuid.UUID, quantity decimal.Decimal, overridePrice *decimal.Decimal, serialNumber string) (*OrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if overridePrice != nil && overridePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Override price cannot be negative")
	}
	if len(serialNumber) > 100 {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Serial number cannot exceed 100 characters")
	}
	return &OrderLine{
		ID:             uuid.New(),
		ProductID:      productID,
		Quantity:       quantity,
		ManualOverride: overridePrice != nil,
		OverridePrice:  overridePrice,
		SerialNumber:   serialNumber,
		CreatedAt:      time.Now(),
	}, nil
}

// Terms returns the override terms used by the resolver
func (l *OrderLine) Terms() pricing.LineTerms {
	return pricing.LineTerms{
		ManualOverride: l.ManualOverride,
		OverridePrice:  l.OverridePrice,
	}
}

// ApplyResolution stores the resolved unit price and the line total
func (l *OrderLine) ApplyResolution(resolved pricing.ResolvedPrice) {
	l.UnitPrice = resolved.UnitPrice
	l.PriceRule = resolved.Rule
	l.LineTotal = pricing.RoundMoney(resolved.UnitPrice.Mul(l.Quantity))
}

// Order is a customer order. Its exchange rate snapshot is captured at
// creation and reused for every line; later factor changes never reprice
// an existing order.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber          string
	CustomerID           uuid.UUID
	CurrencyMode         pricing.CurrencyMode
	ExchangeRateSnapshot decimal.Decimal
	DiscountMode         pricing.DiscountMode
	DiscountValue        decimal.Decimal
	SupplierID           *uuid.UUID
	PaymentMethod        PaymentMethod
	Status               OrderStatus
	Lines                []OrderLine
	TotalAmount          decimal.Decimal
	CancelledAt          *time.Time
	CancelReason         string
}

// OrderTerms groups the order-level pricing inputs accepted by NewOrder
type OrderTerms struct {
	CurrencyMode  pricing.CurrencyMode
	DiscountMode  pricing.DiscountMode
	DiscountValue decimal.Decimal
	SupplierID    *uuid.UUID
	PaymentMethod PaymentMethod
}

// NewOrder creates a placed order, capturing exchangeRate as the snapshot
func NewOrder(orderNumber string, customerID uuid.UUID, terms OrderTerms, exchangeRate decimal.Decimal) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !terms.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if !exchangeRate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_EXCHANGE_RATE", "Exchange rate snapshot must be positive")
	}

	order := &Order{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		OrderNumber:          orderNumber,
		CustomerID:           customerID,
		CurrencyMode:         terms.CurrencyMode,
		ExchangeRateSnapshot: exchangeRate,
		DiscountMode:         terms.DiscountMode,
		DiscountValue:        terms.DiscountValue,
		SupplierID:           terms.SupplierID,
		PaymentMethod:        terms.PaymentMethod,
		Status:               OrderStatusPlaced,
		TotalAmount:          decimal.Zero,
	}
	if err := order.Terms().Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Terms returns the order-level inputs used by the resolver
func (o *Order) Terms() pricing.OrderTerms {
	return pricing.OrderTerms{
		CurrencyMode:         o.CurrencyMode,
		ExchangeRateSnapshot: o.ExchangeRateSnapshot,
		DiscountMode:         o.DiscountMode,
		DiscountValue:        o.DiscountValue,
		PlacedAt:             o.CreatedAt,
	}
}

// AddLine attaches a priced line and updates the total
func (o *Order) AddLine(line OrderLine) error {
	if o.Status != OrderStatusPlaced {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add lines to order in %s status", o.Status))
	}
	if line.PriceRule == "" {
		return shared.NewDomainError("UNPRICED_LINE", "Order line has not been priced")
	}
	line.OrderID = o.ID
	o.Lines = append(o.Lines, line)
	o.recalculateTotal()
	return nil
}

// Cancel cancels a placed order. Cancelling twice is an error; callers
// that replay cancellations check IsCancelled first.
func (o *Order) Cancel(reason string) error {
	if o.Status != OrderStatusPlaced {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// IsCancelled reports whether the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsCredit reports whether the order is settled against customer credit
func (o *Order) IsCredit() bool {
	return o.PaymentMethod == PaymentMethodCredit
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal)
	}
	o.TotalAmount = pricing.RoundMoney(total)
}
