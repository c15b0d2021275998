package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	Code          string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string               `gorm:"type:varchar(200);not null"`
	Kind          partner.CustomerKind `gorm:"type:varchar(20);not null;default:'person'"`
	PricingClass  pricing.PricingClass `gorm:"type:varchar(20);not null;default:'General'"`
	CreditEnabled bool                 `gorm:"not null;default:false"`
	CreditLimit   decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Balance       decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Kind:              m.Kind,
		PricingClass:      m.PricingClass,
		CreditEnabled:     m.CreditEnabled,
		CreditLimit:       m.CreditLimit,
		Balance:           m.Balance,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Kind = c.Kind
	m.PricingClass = c.PricingClass
	m.CreditEnabled = c.CreditEnabled
	m.CreditLimit = c.CreditLimit
	m.Balance = c.Balance
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// CreditLedgerEntryModel is one balance movement. The unique index on
// (order_id, kind) makes authorize and release at-most-once per order.
type CreditLedgerEntryModel struct {
	ID           uuid.UUID               `gorm:"type:uuid;primary_key"`
	CustomerID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	OrderID      uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_credit_ledger_order_kind,priority:1"`
	Kind         partner.LedgerEntryKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_credit_ledger_order_kind,priority:2"`
	Amount       decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	BalanceAfter decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	CreatedAt    time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditLedgerEntryModel) TableName() string {
	return "credit_ledger_entries"
}

// ToDomain converts the persistence model to a domain CreditLedgerEntry.
func (m *CreditLedgerEntryModel) ToDomain() *partner.CreditLedgerEntry {
	return &partner.CreditLedgerEntry{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		OrderID:      m.OrderID,
		Kind:         m.Kind,
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		CreatedAt:    m.CreatedAt,
	}
}

// CreditLedgerEntryModelFromDomain creates a new persistence model from a domain entry.
func CreditLedgerEntryModelFromDomain(e *partner.CreditLedgerEntry) *CreditLedgerEntryModel {
	return &CreditLedgerEntryModel{
		ID:           e.ID,
		CustomerID:   e.CustomerID,
		OrderID:      e.OrderID,
		Kind:         e.Kind,
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt,
	}
}
