package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence.
// It never writes the balance of an existing customer; see CreditLedger.
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// Save creates a customer or updates its profile fields
	Save(ctx context.Context, customer *Customer) error
}
