package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tradeapp "github.com/nvictorme/nikola-sub002/internal/application/trade"
	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/cache"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/persistence"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/persistence/models"
	"github.com/nvictorme/nikola-sub002/tests/testutil"
)

type orderFixture struct {
	tdb      *TestDB
	service  *tradeapp.OrderService
	customer *partner.Customer
	product  *catalog.Product
}

func newOrderFixture(t *testing.T, creditLimit string) *orderFixture {
	t.Helper()
	tdb := NewSharedTestDB(t)
	ctx := context.Background()

	customer := testutil.NewCustomer(t, "CUST-"+uuid.NewString()[:8], pricing.PricingClassGeneral, creditLimit)
	require.NoError(t, persistence.NewGormCustomerRepository(tdb.DB).Save(ctx, customer))

	product := testutil.NewProduct(t, "SKU-"+uuid.NewString()[:8], "100", "90", "80")
	require.NoError(t, persistence.NewGormProductRepository(tdb.DB).Save(ctx, product))

	service := tradeapp.NewOrderService(
		persistence.NewGormTransactionScope(tdb.DB, zap.NewNop()),
		persistence.NewGormOrderRepository(tdb.DB),
		cache.NewInMemoryFactorStore(),
		pricing.NewPriceResolver(pricing.NewOfferEvaluator()),
		zap.NewNop(),
	)
	return &orderFixture{tdb: tdb, service: service, customer: customer, product: product}
}

func (f *orderFixture) request(method string, qty string) tradeapp.PlaceOrderRequest {
	return tradeapp.PlaceOrderRequest{
		CustomerID:    f.customer.ID,
		CurrencyMode:  string(pricing.CurrencyUSD),
		PaymentMethod: method,
		Lines: []tradeapp.PlaceOrderLineRequest{
			{ProductID: f.product.ID, Quantity: testutil.Dec(qty)},
		},
	}
}

func TestOrderFlow_CreditOrderAuthorizesAndCancelReleases(t *testing.T) {
	f := newOrderFixture(t, "500")
	ctx := context.Background()

	// General tier 100 * 1.1 class factor * 1 USD = 110.00 per unit
	placed, err := f.service.PlaceOrder(ctx, f.request("credit", "2"))
	require.NoError(t, err)
	assert.Equal(t, "220.00", pricing.FormatMoney(placed.TotalAmount))
	require.Len(t, placed.Lines, 1)
	assert.Equal(t, string(pricing.RuleTier), placed.Lines[0].PriceRule)
	assert.NotEmpty(t, placed.Lines[0].Trace)
	assert.Equal(t, "220.00", balanceOf(t, f.tdb, f.customer.ID))

	stored, err := f.service.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, stored.OrderNumber)
	assert.Equal(t, "110.00", pricing.FormatMoney(stored.Lines[0].UnitPrice))

	cancelled, err := f.service.CancelOrder(ctx, placed.ID, tradeapp.CancelOrderRequest{Reason: "changed mind"})
	require.NoError(t, err)
	assert.True(t, cancelled.CreditReleased)
	assert.False(t, cancelled.AlreadyCancelled)
	assert.Equal(t, "0.00", balanceOf(t, f.tdb, f.customer.ID))

	again, err := f.service.CancelOrder(ctx, placed.ID, tradeapp.CancelOrderRequest{})
	require.NoError(t, err)
	assert.True(t, again.AlreadyCancelled)
	assert.False(t, again.CreditReleased)
	assert.Equal(t, "0.00", balanceOf(t, f.tdb, f.customer.ID))
}

func TestOrderFlow_DeclineRollsBackTheOrder(t *testing.T) {
	f := newOrderFixture(t, "100")

	_, err := f.service.PlaceOrder(context.Background(), f.request("credit", "1"))
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, partner.CodeCreditDeclined, de.Code)

	var orders, lines int64
	require.NoError(t, f.tdb.DB.Model(&models.OrderModel{}).Where("customer_id = ?", f.customer.ID).Count(&orders).Error)
	require.NoError(t, f.tdb.DB.Model(&models.OrderLineModel{}).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Equal(t, "0.00", balanceOf(t, f.tdb, f.customer.ID))
}

func TestOrderFlow_CashOrderLeavesBalanceAlone(t *testing.T) {
	f := newOrderFixture(t, "")

	placed, err := f.service.PlaceOrder(context.Background(), f.request("cash", "3"))
	require.NoError(t, err)
	assert.Equal(t, "330.00", pricing.FormatMoney(placed.TotalAmount))
	assert.Equal(t, "0.00", balanceOf(t, f.tdb, f.customer.ID))
}

func TestOrderFlow_ManualOverrideWins(t *testing.T) {
	f := newOrderFixture(t, "")
	req := f.request("cash", "1")
	req.Lines[0].OverridePrice = testutil.DecPtr("12.345")

	placed, err := f.service.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, string(pricing.RuleManual), placed.Lines[0].PriceRule)
	assert.Equal(t, "12.35", pricing.FormatMoney(placed.Lines[0].UnitPrice))
}
