// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no ORM tags; each model converts with ToDomain and
// a FromDomain constructor.
//
// - base.go: BaseModel and AggregateModel (optimistic lock version)
// - catalog.go: products and their append-only price history
// - partner.go: customers and the credit ledger
// - trade.go: orders and order lines
package models

// All returns every model for AutoMigrate in tests and tooling.
func All() []any {
	return []any{
		&ProductModel{},
		&PriceHistoryModel{},
		&CustomerModel{},
		&CreditLedgerEntryModel{},
		&OrderModel{},
		&OrderLineModel{},
	}
}
