package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber          string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	CurrencyMode         pricing.CurrencyMode `gorm:"type:varchar(30);not null"`
	ExchangeRateSnapshot decimal.Decimal      `gorm:"type:decimal(18,6);not null"`
	DiscountMode         pricing.DiscountMode `gorm:"type:varchar(20)"`
	DiscountValue        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	SupplierID           *uuid.UUID           `gorm:"type:uuid;index"`
	PaymentMethod        trade.PaymentMethod  `gorm:"type:varchar(20);not null"`
	Status               trade.OrderStatus    `gorm:"type:varchar(20);not null;default:'PLACED';index"`
	TotalAmount          decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	CancelledAt          *time.Time
	CancelReason         string           `gorm:"type:varchar(500)"`
	Lines                []OrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		OrderNumber:          m.OrderNumber,
		CustomerID:           m.CustomerID,
		CurrencyMode:         m.CurrencyMode,
		ExchangeRateSnapshot: m.ExchangeRateSnapshot,
		DiscountMode:         m.DiscountMode,
		DiscountValue:        m.DiscountValue,
		SupplierID:           m.SupplierID,
		PaymentMethod:        m.PaymentMethod,
		Status:               m.Status,
		TotalAmount:          m.TotalAmount,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
		Lines:                make([]trade.OrderLine, len(m.Lines)),
	}
	for i, line := range m.Lines {
		order.Lines[i] = *line.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.CurrencyMode = o.CurrencyMode
	m.ExchangeRateSnapshot = o.ExchangeRateSnapshot
	m.DiscountMode = o.DiscountMode
	m.DiscountValue = o.DiscountValue
	m.SupplierID = o.SupplierID
	m.PaymentMethod = o.PaymentMethod
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Lines = make([]OrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = *OrderLineModelFromDomain(&o.Lines[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineModel is the persistence model for an order line.
type OrderLineModel struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ManualOverride bool             `gorm:"not null;default:false"`
	OverridePrice  *decimal.Decimal `gorm:"type:decimal(18,2)"`
	SerialNumber   string           `gorm:"type:varchar(100)"`
	UnitPrice      decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	PriceRule      pricing.Rule     `gorm:"type:varchar(20);not null"`
	LineTotal      decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CreatedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain OrderLine.
func (m *OrderLineModel) ToDomain() *trade.OrderLine {
	return &trade.OrderLine{
		ID:             m.ID,
		OrderID:        m.OrderID,
		ProductID:      m.ProductID,
		Quantity:       m.Quantity,
		ManualOverride: m.ManualOverride,
		OverridePrice:  m.OverridePrice,
		SerialNumber:   m.SerialNumber,
		UnitPrice:      m.UnitPrice,
		PriceRule:      m.PriceRule,
		LineTotal:      m.LineTotal,
		CreatedAt:      m.CreatedAt,
	}
}

// OrderLineModelFromDomain creates a new persistence model from a domain OrderLine.
func OrderLineModelFromDomain(l *trade.OrderLine) *OrderLineModel {
	return &OrderLineModel{
		ID:             l.ID,
		OrderID:        l.OrderID,
		ProductID:      l.ProductID,
		Quantity:       l.Quantity,
		ManualOverride: l.ManualOverride,
		OverridePrice:  l.OverridePrice,
		SerialNumber:   l.SerialNumber,
		UnitPrice:      l.UnitPrice,
		PriceRule:      l.PriceRule,
		LineTotal:      l.LineTotal,
		CreatedAt:      l.CreatedAt,
	}
}
