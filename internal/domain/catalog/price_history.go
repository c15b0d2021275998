package catalog

import (
	"context"
	"time"

	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistoryEntry is an immutable snapshot of a product's cost and price.
// Entries are never edited; DeletedAt marks a corrective soft delete and
// leaves the values readable.
type PriceHistoryEntry struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Cost      decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
	DeletedAt *time.Time
}

// NewPriceHistoryEntry creates a new history entry
func NewPriceHistoryEntry(productID uuid.UUID, cost, price decimal.Decimal) (*PriceHistoryEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Price history requires a product")
	}
	if cost.IsNegative() || price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price history values cannot be negative")
	}
	return &PriceHistoryEntry{
		ID:        uuid.New(),
		ProductID: productID,
		Cost:      cost,
		Price:     price,
		CreatedAt: time.Now(),
	}, nil
}

// IsDeleted reports whether the entry was soft-deleted
func (e *PriceHistoryEntry) IsDeleted() bool {
	return e.DeletedAt != nil
}

// PriceHistoryRecorder appends price history. Record must only be called
// after the mutation it describes has committed.
type PriceHistoryRecorder interface {
	Record(ctx context.Context, productID uuid.UUID, cost, price decimal.Decimal) error
}

// PriceHistoryRepository reads and corrects the price history
type PriceHistoryRepository interface {
	PriceHistoryRecorder

	// FindByID finds an entry, including soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*PriceHistoryEntry, error)

	// ListByProduct returns entries oldest first
	ListByProduct(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]PriceHistoryEntry, error)

	// SoftDelete marks an entry deleted without removing its values
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
