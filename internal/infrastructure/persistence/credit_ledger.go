package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxAuthorizeAttempts bounds re-evaluation when the guarded UPDATE misses
// but a fresh read says the amount fits (the balance moved in between).
const maxAuthorizeAttempts = 3

// GormCreditLedger implements CreditLedger on the customers table and the
// credit_ledger_entries table. The balance check and increment happen in
// one conditional UPDATE, so concurrent authorizations are serialized by
// the row lock instead of a read-then-write in application code.
//
// When db is a transaction handle the ledger takes part in that
// transaction; otherwise each call opens its own.
type GormCreditLedger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormCreditLedger creates a new GormCreditLedger
func NewGormCreditLedger(db *gorm.DB, logger *zap.Logger) *GormCreditLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormCreditLedger{db: db, logger: logger}
}

// WithTx returns a ledger bound to tx, so authorizations commit or roll
// back with the caller's transaction
func (l *GormCreditLedger) WithTx(tx *gorm.DB) *GormCreditLedger {
	return &GormCreditLedger{db: tx, logger: l.logger}
}

// Authorize adds amount to the customer's balance if credit is enabled and
// the result stays within the limit. A decline is returned as a decision,
// not an error. Authorizing an order twice returns the first decision
// without moving the balance again.
func (l *GormCreditLedger) Authorize(ctx context.Context, customerID, orderID uuid.UUID, amount decimal.Decimal) (partner.CreditDecision, error) {
	if !amount.IsPositive() {
		return partner.CreditDecision{}, partner.ErrInvalidAmount
	}
	amount = pricing.RoundMoney(amount)

	var decision partner.CreditDecision
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findLedgerEntry(tx, orderID, partner.LedgerEntryAuthorize)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.CustomerID != customerID {
				return shared.NewDomainError("INVALID_STATE", "Order is already authorized for another customer")
			}
			decision = partner.CreditDecision{Authorized: true, BalanceAfter: existing.BalanceAfter}
			return nil
		}

		for attempt := 0; attempt < maxAuthorizeAttempts; attempt++ {
			result := tx.Model(&models.CustomerModel{}).
				Where("id = ? AND credit_enabled = ? AND balance + ? <= credit_limit", customerID, true, amount).
				Updates(map[string]any{
					"balance":    gorm.Expr("balance + ?", amount),
					"version":    gorm.Expr("version + 1"),
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}

			customer, err := loadCustomer(tx, customerID)
			if err != nil {
				return err
			}

			if result.RowsAffected == 1 {
				decision = partner.CreditDecision{Authorized: true, BalanceAfter: customer.Balance}
				entry := partner.NewCreditLedgerEntry(customerID, orderID, partner.LedgerEntryAuthorize, amount, customer.Balance)
				return tx.Create(models.CreditLedgerEntryModelFromDomain(entry)).Error
			}

			decision = partner.DecideCredit(customer.CreditEnabled, customer.CreditLimit, customer.Balance, amount)
			if !decision.Authorized {
				return nil
			}
		}
		return shared.ErrConcurrencyConflict
	})
	if err != nil {
		return partner.CreditDecision{}, err
	}

	if decision.Authorized {
		l.logger.Info("Credit authorized",
			zap.String("customer_id", customerID.String()),
			zap.String("order_id", orderID.String()),
			zap.String("amount", pricing.FormatMoney(amount)),
			zap.String("balance_after", pricing.FormatMoney(decision.BalanceAfter)),
		)
	} else {
		l.logger.Info("Credit declined",
			zap.String("customer_id", customerID.String()),
			zap.String("order_id", orderID.String()),
			zap.String("amount", pricing.FormatMoney(amount)),
			zap.String("reason", decision.Reason),
		)
	}
	return decision, nil
}

// Release returns amount to the customer's available credit for a
// previously authorized order. The release entry is inserted first under
// the (order_id, kind) unique index; a replay hits the conflict, inserts
// nothing and returns released=false without touching the balance.
func (l *GormCreditLedger) Release(ctx context.Context, customerID, orderID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, partner.ErrInvalidAmount
	}
	amount = pricing.RoundMoney(amount)

	released := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		auth, err := findLedgerEntry(tx, orderID, partner.LedgerEntryAuthorize)
		if err != nil {
			return err
		}
		if auth == nil || auth.CustomerID != customerID {
			return partner.ErrNoAuthorization
		}
		if amount.GreaterThan(auth.Amount) {
			return shared.NewDomainError("INVALID_AMOUNT", "Release exceeds the authorized amount "+pricing.FormatMoney(auth.Amount))
		}

		entry := partner.NewCreditLedgerEntry(customerID, orderID, partner.LedgerEntryRelease, amount, decimal.Zero)
		model := models.CreditLedgerEntryModelFromDomain(entry)
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.CustomerModel{}).
			Where("id = ?", customerID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance - ?", amount),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		customer, err := loadCustomer(tx, customerID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.CreditLedgerEntryModel{}).
			Where("id = ?", model.ID).
			Update("balance_after", customer.Balance).Error; err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if released {
		l.logger.Info("Credit released",
			zap.String("customer_id", customerID.String()),
			zap.String("order_id", orderID.String()),
			zap.String("amount", pricing.FormatMoney(amount)),
		)
	} else {
		l.logger.Debug("Credit release replayed, nothing to do",
			zap.String("order_id", orderID.String()),
		)
	}
	return released, nil
}

// EntriesForOrder lists the ledger entries of an order, oldest first
func (l *GormCreditLedger) EntriesForOrder(ctx context.Context, orderID uuid.UUID) ([]partner.CreditLedgerEntry, error) {
	var entryModels []models.CreditLedgerEntryModel
	if err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]partner.CreditLedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// OutstandingCredit returns the sum of balances over credit-enabled customers
func (l *GormCreditLedger) OutstandingCredit(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := l.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("credit_enabled = ?", true).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func findLedgerEntry(tx *gorm.DB, orderID uuid.UUID, kind partner.LedgerEntryKind) (*models.CreditLedgerEntryModel, error) {
	var entry models.CreditLedgerEntryModel
	err := tx.Where("order_id = ? AND kind = ?", orderID, kind).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func loadCustomer(tx *gorm.DB, id uuid.UUID) (*models.CustomerModel, error) {
	var customer models.CustomerModel
	if err := tx.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// Ensure GormCreditLedger implements CreditLedger
var _ partner.CreditLedger = (*GormCreditLedger)(nil)
