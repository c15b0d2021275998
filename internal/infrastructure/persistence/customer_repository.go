package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts a new customer, or updates the profile of an existing one.
// The balance column of an existing row is left to the credit ledger.
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.CustomerModel{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"code":           customer.Code,
			"name":           customer.Name,
			"kind":           customer.Kind,
			"pricing_class":  customer.PricingClass,
			"credit_enabled": customer.CreditEnabled,
			"credit_limit":   customer.CreditLimit,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return db.Create(models.CustomerModelFromDomain(customer)).Error
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
