package trade

import (
	"context"

	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/trade"
)

// TransactionScope provides transactional access to the order repositories.
// All repository operations made inside fn are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to one transaction.
//
// Credit() is the ledger whose balance update must commit or roll back
// together with the order row: a declined authorization aborts the order,
// and a failed order insert never leaves a balance increment behind.
type TransactionalRepositories interface {
	Orders() trade.OrderRepository
	Customers() partner.CustomerRepository
	Products() catalog.ProductRepository
	Credit() partner.CreditLedger
}
