package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPricedOrder(t *testing.T, number string) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(number, uuid.New(), trade.OrderTerms{
		CurrencyMode:  pricing.CurrencyUSD,
		PaymentMethod: trade.PaymentMethodCredit,
	}, dec("1"))
	require.NoError(t, err)

	line, err := trade.NewOrderLine(uuid.New(), decimal.NewFromInt(2), nil, "SN-1")
	require.NoError(t, err)
	line.ApplyResolution(pricing.ResolvedPrice{UnitPrice: dec("110"), Rule: pricing.RuleTier})
	require.NoError(t, order.AddLine(*line))
	return order
}

func TestGormOrderRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := newPricedOrder(t, "ORD-1")
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", found.OrderNumber)
	assert.True(t, found.ExchangeRateSnapshot.Equal(dec("1")))
	require.Len(t, found.Lines, 1)
	assert.True(t, found.Lines[0].LineTotal.Equal(dec("220")))
	assert.Equal(t, pricing.RuleTier, found.Lines[0].PriceRule)
	assert.True(t, found.TotalAmount.Equal(dec("220")))

	t.Run("duplicate order number", func(t *testing.T) {
		err := repo.Create(ctx, newPricedOrder(t, "ORD-1"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("cancel with lock", func(t *testing.T) {
		require.NoError(t, found.Cancel("customer request"))
		require.NoError(t, repo.SaveWithLock(ctx, found))

		reloaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.IsCancelled())
		assert.Equal(t, "customer request", reloaded.CancelReason)

		// a copy carrying version 2 expects version 1 in the table
		found.Version = 2
		assert.ErrorIs(t, repo.SaveWithLock(ctx, found), shared.ErrConcurrencyConflict)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
