package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// Create inserts a new order with its lines
	Create(ctx context.Context, order *Order) error

	// SaveWithLock updates the order header if its stored version matches
	SaveWithLock(ctx context.Context, order *Order) error
}
