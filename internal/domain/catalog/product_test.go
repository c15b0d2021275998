package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with upper-cased code", func(t *testing.T) {
		p, err := NewProduct("cable-01", "Copper cable")
		require.NoError(t, err)
		assert.Equal(t, "CABLE-01", p.Code)
		assert.Equal(t, 1, p.Version)
		assert.Nil(t, p.PriceGeneral)
		assert.True(t, p.Cost.IsZero())
	})

	t.Run("rejects invalid code", func(t *testing.T) {
		_, err := NewProduct("bad code!", "Copper cable")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct("CABLE", "")
		assert.Error(t, err)
	})
}

func TestProduct_ApplyPricing(t *testing.T) {
	t.Run("tier change emits one event and bumps version", func(t *testing.T) {
		p, _ := NewProduct("CABLE", "Copper cable")

		changed, err := p.ApplyPricing(PricingChange{
			Tiers: &TierPrices{General: amount("100"), Installer: amount("90")},
			Cost:  amount("55.50"),
		}, time.UTC)

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 2, p.Version)
		require.Len(t, p.GetDomainEvents(), 1)

		evt := p.GetDomainEvents()[0].(*ProductPriceChangedEvent)
		assert.Equal(t, EventTypeProductPriceChanged, evt.EventType())
		assert.True(t, evt.OldPrice.IsZero())
		assert.True(t, decimal.RequireFromString("100").Equal(evt.NewPrice))
		assert.True(t, decimal.RequireFromString("55.50").Equal(evt.NewCost))
	})

	t.Run("identical values do not count as a change", func(t *testing.T) {
		p, _ := NewProduct("CABLE", "Copper cable")
		_, err := p.ApplyPricing(PricingChange{Tiers: &TierPrices{General: amount("100")}}, time.UTC)
		require.NoError(t, err)
		p.ClearDomainEvents()

		changed, err := p.ApplyPricing(PricingChange{Tiers: &TierPrices{General: amount("100.00")}}, time.UTC)

		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, p.GetDomainEvents())
		assert.Equal(t, 2, p.Version)
	})

	t.Run("negative tier price is rejected without mutation", func(t *testing.T) {
		p, _ := NewProduct("CABLE", "Copper cable")

		_, err := p.ApplyPricing(PricingChange{Tiers: &TierPrices{Wholesale: amount("-1")}}, time.UTC)

		assert.Error(t, err)
		assert.Nil(t, p.PriceWholesale)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("active offer must be well formed", func(t *testing.T) {
		p, _ := NewProduct("CABLE", "Copper cable")

		_, err := p.ApplyPricing(PricingChange{Offer: &Offer{Active: true, Price: amount("60"), Start: "1/3/2024", End: "2024-03-10"}}, time.UTC)

		require.Error(t, err)
		assert.True(t, errors.Is(err, pricing.ErrInvalidOffer))
		assert.False(t, p.OfferActive)
	})

	t.Run("offer change is a price change", func(t *testing.T) {
		p, _ := NewProduct("CABLE", "Copper cable")

		changed, err := p.ApplyPricing(PricingChange{Offer: &Offer{Active: true, Price: amount("60"), Start: "2024-03-01", End: "2024-03-10"}}, time.UTC)

		require.NoError(t, err)
		assert.True(t, changed)
		prices := p.Prices()
		assert.True(t, prices.Offer.Active)
		assert.Equal(t, "2024-03-01", prices.Offer.Start)
		assert.Equal(t, p.ID, prices.ProductID)

		evt := p.GetDomainEvents()[0].(*ProductPriceChangedEvent)
		assert.False(t, evt.ChangesHistory())
	})
}

func TestProductPriceChangedEvent_ChangesHistory(t *testing.T) {
	tests := []struct {
		name   string
		change PricingChange
		want   bool
	}{
		{"general tier", PricingChange{Tiers: &TierPrices{General: amount("101")}}, true},
		{"cost", PricingChange{Cost: amount("40")}, true},
		{"installer tier only", PricingChange{Tiers: &TierPrices{General: amount("100"), Installer: amount("95")}}, false},
		{"wholesale tier only", PricingChange{Tiers: &TierPrices{General: amount("100.00"), Wholesale: amount("85")}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewProduct("CABLE", "Copper cable")
			_, err := p.ApplyPricing(PricingChange{Tiers: &TierPrices{General: amount("100")}, Cost: amount("50")}, time.UTC)
			require.NoError(t, err)
			p.ClearDomainEvents()

			changed, err := p.ApplyPricing(tt.change, time.UTC)
			require.NoError(t, err)
			require.True(t, changed)

			evt := p.GetDomainEvents()[0].(*ProductPriceChangedEvent)
			assert.Equal(t, tt.want, evt.ChangesHistory())
		})
	}
}

func TestNewPriceHistoryEntry(t *testing.T) {
	p, _ := NewProduct("CABLE", "Copper cable")

	entry, err := NewPriceHistoryEntry(p.ID, decimal.RequireFromString("10"), decimal.RequireFromString("12"))
	require.NoError(t, err)
	assert.False(t, entry.IsDeleted())
	assert.Equal(t, p.ID, entry.ProductID)

	_, err = NewPriceHistoryEntry(p.ID, decimal.RequireFromString("-1"), decimal.Zero)
	assert.Error(t, err)
}
