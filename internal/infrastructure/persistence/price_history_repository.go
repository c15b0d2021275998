package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPriceHistoryRepository implements PriceHistoryRepository using GORM.
// It only ever inserts rows or sets deleted_at; values are never updated.
type GormPriceHistoryRepository struct {
	db *gorm.DB
}

// NewGormPriceHistoryRepository creates a new GormPriceHistoryRepository
func NewGormPriceHistoryRepository(db *gorm.DB) *GormPriceHistoryRepository {
	return &GormPriceHistoryRepository{db: db}
}

// Record appends an entry for productID
func (r *GormPriceHistoryRepository) Record(ctx context.Context, productID uuid.UUID, cost, price decimal.Decimal) error {
	entry, err := catalog.NewPriceHistoryEntry(productID, cost, price)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(models.PriceHistoryModelFromDomain(entry)).Error
}

// FindByID finds an entry, soft-deleted or not
func (r *GormPriceHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PriceHistoryEntry, error) {
	var model models.PriceHistoryModel
	if err := r.db.WithContext(ctx).Unscoped().First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByProduct returns the product's entries oldest first
func (r *GormPriceHistoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]catalog.PriceHistoryEntry, error) {
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}

	var historyModels []models.PriceHistoryModel
	if err := query.
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	entries := make([]catalog.PriceHistoryEntry, len(historyModels))
	for i := range historyModels {
		entries[i] = *historyModels[i].ToDomain()
	}
	return entries, nil
}

// SoftDelete marks an entry deleted. Deleting an already deleted entry is
// a no-op.
func (r *GormPriceHistoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PriceHistoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Nothing matched the live rows: distinguish already-deleted from missing
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return nil
}

// Ensure GormPriceHistoryRepository implements PriceHistoryRepository
var _ catalog.PriceHistoryRepository = (*GormPriceHistoryRepository)(nil)
