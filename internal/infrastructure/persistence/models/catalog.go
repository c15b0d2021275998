package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductModel is the persistence model for the Product domain entity.
// Offer boundaries stay text columns; they are parsed when evaluated so a
// malformed value can never block a write of unrelated fields.
type ProductModel struct {
	AggregateModel
	Code           string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string           `gorm:"type:varchar(200);not null"`
	PriceGeneral   *decimal.Decimal `gorm:"type:decimal(18,2)"`
	PriceInstaller *decimal.Decimal `gorm:"type:decimal(18,2)"`
	PriceWholesale *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Cost           decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	OfferPrice     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	OfferActive    bool             `gorm:"not null;default:false"`
	OfferStart     string           `gorm:"type:varchar(10)"`
	OfferEnd       string           `gorm:"type:varchar(10)"`
	MinStock       int              `gorm:"not null;default:0"`
	Position       int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		PriceGeneral:      m.PriceGeneral,
		PriceInstaller:    m.PriceInstaller,
		PriceWholesale:    m.PriceWholesale,
		Cost:              m.Cost,
		OfferPrice:        m.OfferPrice,
		OfferActive:       m.OfferActive,
		OfferStart:        m.OfferStart,
		OfferEnd:          m.OfferEnd,
		MinStock:          m.MinStock,
		Position:          m.Position,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.PriceGeneral = p.PriceGeneral
	m.PriceInstaller = p.PriceInstaller
	m.PriceWholesale = p.PriceWholesale
	m.Cost = p.Cost
	m.OfferPrice = p.OfferPrice
	m.OfferActive = p.OfferActive
	m.OfferStart = p.OfferStart
	m.OfferEnd = p.OfferEnd
	m.MinStock = p.MinStock
	m.Position = p.Position
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// PriceHistoryModel is the persistence model for price history entries.
// Rows are insert-only; gorm.DeletedAt gives the soft delete.
type PriceHistoryModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_history_product_created,priority:1"`
	Cost      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time       `gorm:"not null;index:idx_price_history_product_created,priority:2"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (PriceHistoryModel) TableName() string {
	return "price_history"
}

// ToDomain converts the persistence model to a domain PriceHistoryEntry.
func (m *PriceHistoryModel) ToDomain() *catalog.PriceHistoryEntry {
	entry := &catalog.PriceHistoryEntry{
		ID:        m.ID,
		ProductID: m.ProductID,
		Cost:      m.Cost,
		Price:     m.Price,
		CreatedAt: m.CreatedAt,
	}
	if m.DeletedAt.Valid {
		deletedAt := m.DeletedAt.Time
		entry.DeletedAt = &deletedAt
	}
	return entry
}

// PriceHistoryModelFromDomain creates a new persistence model from a domain entry.
func PriceHistoryModelFromDomain(e *catalog.PriceHistoryEntry) *PriceHistoryModel {
	m := &PriceHistoryModel{
		ID:        e.ID,
		ProductID: e.ProductID,
		Cost:      e.Cost,
		Price:     e.Price,
		CreatedAt: e.CreatedAt,
	}
	if e.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}
	return m
}
