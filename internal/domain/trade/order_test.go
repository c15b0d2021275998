package trade

import (
	"testing"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashTerms() OrderTerms {
	return OrderTerms{CurrencyMode: pricing.CurrencyUSD, PaymentMethod: PaymentMethodCash}
}

func TestNewOrder(t *testing.T) {
	customerID := uuid.New()

	t.Run("captures exchange rate snapshot", func(t *testing.T) {
		terms := cashTerms()
		terms.CurrencyMode = pricing.CurrencyRegulated

		o, err := NewOrder("SO-1", customerID, terms, decimal.RequireFromString("1.5"))

		require.NoError(t, err)
		assert.Equal(t, OrderStatusPlaced, o.Status)
		assert.True(t, decimal.RequireFromString("1.5").Equal(o.Terms().ExchangeRateSnapshot))
		assert.Equal(t, o.CreatedAt, o.Terms().PlacedAt)
	})

	tests := []struct {
		name   string
		number string
		terms  func() OrderTerms
		rate   string
	}{
		{"empty number", "", cashTerms, "1"},
		{"zero rate", "SO-1", cashTerms, "0"},
		{"unknown payment", "SO-1", func() OrderTerms { t := cashTerms(); t.PaymentMethod = "barter"; return t }, "1"},
		{"unknown currency", "SO-1", func() OrderTerms { t := cashTerms(); t.CurrencyMode = "EUR"; return t }, "1"},
		{"percentage above one", "SO-1", func() OrderTerms {
			t := cashTerms()
			t.DiscountMode = pricing.DiscountPercentage
			t.DiscountValue = decimal.NewFromInt(20)
			return t
		}, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.number, customerID, tt.terms(), decimal.RequireFromString(tt.rate))
			assert.Error(t, err)
		})
	}
}

func TestOrder_AddLineAndTotals(t *testing.T) {
	o, err := NewOrder("SO-1", uuid.New(), cashTerms(), decimal.NewFromInt(1))
	require.NoError(t, err)

	line, err := NewOrderLine(uuid.New(), decimal.NewFromInt(3), nil, "SN-1")
	require.NoError(t, err)

	assert.Error(t, o.AddLine(*line), "unpriced lines are rejected")

	line.ApplyResolution(pricing.ResolvedPrice{UnitPrice: decimal.RequireFromString("33.33"), Rule: pricing.RuleTier})
	require.NoError(t, o.AddLine(*line))

	assert.Equal(t, "99.99", o.TotalAmount.StringFixed(2))
	assert.Equal(t, o.ID, o.Lines[0].OrderID)
}

func TestNewOrderLine_Override(t *testing.T) {
	price := decimal.RequireFromString("15")
	line, err := NewOrderLine(uuid.New(), decimal.NewFromInt(1), &price, "")

	require.NoError(t, err)
	assert.True(t, line.Terms().ManualOverride)

	_, err = NewOrderLine(uuid.New(), decimal.Zero, nil, "")
	assert.Error(t, err)
}

func TestOrder_Cancel(t *testing.T) {
	o, _ := NewOrder("SO-1", uuid.New(), cashTerms(), decimal.NewFromInt(1))

	require.NoError(t, o.Cancel("customer request"))
	assert.True(t, o.IsCancelled())
	assert.NotNil(t, o.CancelledAt)
	assert.Error(t, o.Cancel("again"))
}
