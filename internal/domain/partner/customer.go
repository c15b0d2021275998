package partner

import (
	"time"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerKind distinguishes walk-in persons from system users buying on
// behalf of the business. Only persons carry a running balance.
type CustomerKind string

const (
	CustomerKindPerson     CustomerKind = "person"
	CustomerKindSystemUser CustomerKind = "system_user"
)

// IsValid reports whether the kind is known
func (k CustomerKind) IsValid() bool {
	return k == CustomerKindPerson || k == CustomerKindSystemUser
}

// Customer is the pricing and credit profile of a buyer.
// Balance is changed only through the credit ledger.
type Customer struct {
	shared.BaseAggregateRoot
	Code          string
	Name          string
	Kind          CustomerKind
	PricingClass  pricing.PricingClass
	CreditEnabled bool
	CreditLimit   decimal.Decimal
	Balance       decimal.Decimal
}

// NewCustomer creates a new customer without credit
func NewCustomer(code, name string, kind CustomerKind, class pricing.PricingClass) (*Customer, error) {
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code must be 1 to 50 characters")
	}
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name must be 1 to 200 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Invalid customer kind")
	}
	if !class.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRICING_CLASS", "Invalid pricing class")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Kind:              kind,
		PricingClass:      class,
		CreditLimit:       decimal.Zero,
		Balance:           decimal.Zero,
	}, nil
}

// EnableCredit turns on credit purchases with the given limit. The limit
// cannot be set below the outstanding balance.
func (c *Customer) EnableCredit(limit decimal.Decimal) error {
	if c.Kind != CustomerKindPerson {
		return shared.NewDomainError("CREDIT_NOT_SUPPORTED", "Only persons can buy on credit")
	}
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	if c.Balance.GreaterThan(limit) {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be below the outstanding balance")
	}
	c.CreditEnabled = true
	c.CreditLimit = limit
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// AvailableCredit returns the remaining credit, zero when credit is off
func (c *Customer) AvailableCredit() decimal.Decimal {
	if !c.CreditEnabled {
		return decimal.Zero
	}
	return decimal.Max(c.CreditLimit.Sub(c.Balance), decimal.Zero)
}

// CanAuthorize decides a credit purchase against the current balance
// without changing it.
func (c *Customer) CanAuthorize(amount decimal.Decimal) CreditDecision {
	return DecideCredit(c.CreditEnabled, c.CreditLimit, c.Balance, amount)
}
