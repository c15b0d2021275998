package partner

import (
	"context"
	"time"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credit error codes
const (
	CodeCreditDeclined  = "CREDIT_DECLINED"
	CodeNoAuthorization = "NO_AUTHORIZATION"
)

var (
	ErrCreditDeclined  = shared.NewDomainError(CodeCreditDeclined, "Credit declined")
	ErrNoAuthorization = shared.NewDomainError(CodeNoAuthorization, "No credit authorization for order")
	ErrInvalidAmount   = shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
)

// Decline reasons
const (
	ReasonCreditNotEnabled = "credit not enabled for customer"
)

// CreditDecision is the outcome of a credit authorization. A decline is
// an expected result, not an error.
type CreditDecision struct {
	Authorized   bool
	Reason       string
	Shortfall    decimal.Decimal
	BalanceAfter decimal.Decimal
}

// DeclineError converts a declined decision into a DomainError carrying
// the reason, for callers that must abort a transaction on decline.
func (d CreditDecision) DeclineError() error {
	if d.Authorized {
		return nil
	}
	return shared.NewDomainError(CodeCreditDeclined, d.Reason)
}

// DecideCredit applies the credit rule: declined when credit is disabled
// or when balance + amount exceeds the limit.
func DecideCredit(enabled bool, limit, balance, amount decimal.Decimal) CreditDecision {
	if !enabled {
		return CreditDecision{Reason: ReasonCreditNotEnabled, BalanceAfter: balance}
	}
	after := balance.Add(amount)
	if after.GreaterThan(limit) {
		shortfall := after.Sub(limit)
		return CreditDecision{
			Reason:       "credit limit exceeded by " + pricing.FormatMoney(shortfall),
			Shortfall:    shortfall,
			BalanceAfter: balance,
		}
	}
	return CreditDecision{Authorized: true, BalanceAfter: after}
}

// LedgerEntryKind is the kind of a credit ledger movement
type LedgerEntryKind string

const (
	LedgerEntryAuthorize LedgerEntryKind = "authorize"
	LedgerEntryRelease   LedgerEntryKind = "release"
)

// CreditLedgerEntry records one balance movement tied to an order.
// There is at most one entry per order and kind.
type CreditLedgerEntry struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	OrderID      uuid.UUID
	Kind         LedgerEntryKind
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}

// NewCreditLedgerEntry creates a ledger entry
func NewCreditLedgerEntry(customerID, orderID uuid.UUID, kind LedgerEntryKind, amount, balanceAfter decimal.Decimal) *CreditLedgerEntry {
	return &CreditLedgerEntry{
		ID:           uuid.New(),
		CustomerID:   customerID,
		OrderID:      orderID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now(),
	}
}

// CreditLedger authorizes and releases credit purchases.
//
// Authorize is an atomic read-modify-write of the customer balance; two
// concurrent authorizations can never both pass when only one fits.
// Release is idempotent per order: replaying it returns released=false.
type CreditLedger interface {
	Authorize(ctx context.Context, customerID, orderID uuid.UUID, amount decimal.Decimal) (CreditDecision, error)
	Release(ctx context.Context, customerID, orderID uuid.UUID, amount decimal.Decimal) (released bool, err error)
	EntriesForOrder(ctx context.Context, orderID uuid.UUID) ([]CreditLedgerEntry, error)
}
