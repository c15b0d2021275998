package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/cache"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

// failingFactorStore serves defaults and rejects every write as unavailable
type failingFactorStore struct{}

func (failingFactorStore) Get(context.Context) pricing.FactorTable { return pricing.DefaultFactorTable() }
func (failingFactorStore) Set(context.Context, pricing.FactorTable) error {
	return pricing.ErrFactorStoreUnavailable
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newMetrics(t *testing.T) (*telemetry.PricingMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)
	return metrics, reader
}

// counterTotal sums every data point of a monotonic int counter
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

type quoteFixture struct {
	service   *QuoteService
	products  *MockProductRepository
	customers *MockCustomerRepository
	factors   *cache.InMemoryFactorStore
}

func newQuoteFixture() *quoteFixture {
	f := &quoteFixture{
		products:  new(MockProductRepository),
		customers: new(MockCustomerRepository),
		factors:   cache.NewInMemoryFactorStore(),
	}
	resolver := pricing.NewPriceResolver(pricing.NewOfferEvaluator())
	f.service = NewQuoteService(f.products, f.customers, f.factors, resolver, zap.NewNop())
	return f
}

func newProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("SKU-Q", "Quoted Product")
	require.NoError(t, err)
	p.PriceGeneral = amount("100")
	p.PriceInstaller = amount("95")
	p.PriceWholesale = amount("80")
	return p
}

func TestQuoteService_Quote(t *testing.T) {
	t.Run("prices by pricing class with default factors", func(t *testing.T) {
		f := newQuoteFixture()
		metrics, reader := newMetrics(t)
		f.service.SetMetrics(metrics)
		product := newProduct(t)
		f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		resp, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			PricingClass: string(pricing.PricingClassWholesaler),
			CurrencyMode: string(pricing.CurrencyUSD),
		})

		require.NoError(t, err)
		assert.Equal(t, "72", resp.UnitPrice.String())
		assert.Equal(t, string(pricing.RuleTier), resp.Rule)
		assert.Equal(t, string(pricing.PricingClassWholesaler), resp.PricingClass)
		assert.NotEmpty(t, resp.Trace)
		assert.Equal(t, int64(1), counterTotal(t, reader, "pricing_resolution_total"))
		f.customers.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("customer class wins over the request class", func(t *testing.T) {
		f := newQuoteFixture()
		product := newProduct(t)
		customer, err := partner.NewCustomer("C-1", "Installer Co", partner.CustomerKindPerson, pricing.PricingClassInstaller)
		require.NoError(t, err)
		f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)

		resp, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			CustomerID:   &customer.ID,
			PricingClass: string(pricing.PricingClassGeneral),
			CurrencyMode: string(pricing.CurrencyRegulated),
		})

		require.NoError(t, err)
		assert.Equal(t, string(pricing.PricingClassInstaller), resp.PricingClass)
		assert.True(t, resp.ExchangeRate.Equal(decimal.RequireFromString("1.5")))
		assert.Equal(t, "142.5", resp.UnitPrice.String())
	})

	t.Run("previews credit for the line total", func(t *testing.T) {
		f := newQuoteFixture()
		product := newProduct(t)
		customer, err := partner.NewCustomer("C-2", "Credit Buyer", partner.CustomerKindPerson, pricing.PricingClassGeneral)
		require.NoError(t, err)
		require.NoError(t, customer.EnableCredit(*amount("500")))
		customer.Balance = *amount("300")
		f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)

		// 100 * 1.1 = 110 per unit
		resp, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			CustomerID:   &customer.ID,
			CurrencyMode: string(pricing.CurrencyUSD),
			Quantity:     amount("1"),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Credit)
		assert.True(t, resp.Credit.Enabled)
		assert.True(t, resp.Credit.Authorizable)
		assert.True(t, amount("200").Equal(resp.Credit.Available))

		resp, err = f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			CustomerID:   &customer.ID,
			CurrencyMode: string(pricing.CurrencyUSD),
			Quantity:     amount("2"),
		})
		require.NoError(t, err)
		assert.Equal(t, "220.00", pricing.FormatMoney(resp.LineTotal))
		assert.False(t, resp.Credit.Authorizable)
		assert.Equal(t, "credit limit exceeded by 20.00", resp.Credit.Reason)
		assert.True(t, amount("300").Equal(customer.Balance))
	})

	t.Run("class quotes carry no credit preview", func(t *testing.T) {
		f := newQuoteFixture()
		product := newProduct(t)
		f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		resp, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			PricingClass: string(pricing.PricingClassGeneral),
			CurrencyMode: string(pricing.CurrencyUSD),
		})

		require.NoError(t, err)
		assert.Nil(t, resp.Credit)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(1)))
		assert.True(t, resp.LineTotal.Equal(resp.UnitPrice))
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		f := newQuoteFixture()
		zero := decimal.Zero

		_, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    uuid.New(),
			PricingClass: string(pricing.PricingClassGeneral),
			CurrencyMode: string(pricing.CurrencyUSD),
			Quantity:     &zero,
		})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.ErrInvalidInput.Code, de.Code)
		f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("uses the stored factor table", func(t *testing.T) {
		f := newQuoteFixture()
		product := newProduct(t)
		table := pricing.DefaultFactorTable()
		table[pricing.FactorGeneral] = decimal.RequireFromString("1.25")
		require.NoError(t, f.factors.Set(context.Background(), table))
		f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		resp, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			PricingClass: string(pricing.PricingClassGeneral),
			CurrencyMode: string(pricing.CurrencyUSD),
		})

		require.NoError(t, err)
		assert.Equal(t, "125", resp.UnitPrice.String())
	})

	t.Run("offer applies on its last day", func(t *testing.T) {
		f := newQuoteFixture()
		product := newProduct(t)
		product.OfferActive = true
		product.OfferPrice = amount("50")
		product.OfferStart = "2024-03-01"
		product.OfferEnd = "2024-03-10"
		f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		lastDay := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
		resp, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			PricingClass: string(pricing.PricingClassGeneral),
			CurrencyMode: string(pricing.CurrencyUSD),
			AsOf:         &lastDay,
		})
		require.NoError(t, err)
		assert.Equal(t, string(pricing.RuleOffer), resp.Rule)
		assert.Equal(t, "50", resp.UnitPrice.String())

		nextDay := lastDay.Add(time.Minute)
		resp, err = f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			PricingClass: string(pricing.PricingClassGeneral),
			CurrencyMode: string(pricing.CurrencyUSD),
			AsOf:         &nextDay,
		})
		require.NoError(t, err)
		assert.Equal(t, string(pricing.RuleTier), resp.Rule)
	})

	t.Run("missing tier records the error code", func(t *testing.T) {
		f := newQuoteFixture()
		metrics, reader := newMetrics(t)
		f.service.SetMetrics(metrics)
		product := newProduct(t)
		product.PriceWholesale = nil
		f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		_, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    product.ID,
			PricingClass: string(pricing.PricingClassWholesaler),
			CurrencyMode: string(pricing.CurrencyUSD),
		})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, pricing.CodeMissingTierPrice, de.Code)
		assert.Equal(t, "no tier price for Wholesale", de.Message)
		assert.Equal(t, int64(1), counterTotal(t, reader, "pricing_resolution_errors_total"))
	})

	t.Run("requires a customer or a class", func(t *testing.T) {
		f := newQuoteFixture()

		_, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    uuid.New(),
			CurrencyMode: string(pricing.CurrencyUSD),
		})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.ErrInvalidInput.Code, de.Code)
		f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects a percentage above one", func(t *testing.T) {
		f := newQuoteFixture()

		_, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:     uuid.New(),
			PricingClass:  string(pricing.PricingClassGeneral),
			CurrencyMode:  string(pricing.CurrencyUSD),
			DiscountMode:  string(pricing.DiscountPercentage),
			DiscountValue: decimal.NewFromInt(2),
		})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, pricing.CodeInvalidOrderTerms, de.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newQuoteFixture()
		id := uuid.New()
		f.products.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.Quote(context.Background(), QuoteRequest{
			ProductID:    id,
			PricingClass: string(pricing.PricingClassGeneral),
			CurrencyMode: string(pricing.CurrencyUSD),
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestFactorConfigService(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns defaults when nothing is stored", func(t *testing.T) {
		svc := NewFactorConfigService(cache.NewInMemoryFactorStore(), nil)

		got := svc.Get(ctx)

		assert.True(t, got.ToDomain().Equal(pricing.DefaultFactorTable()))
	})

	t.Run("update replaces the whole table", func(t *testing.T) {
		store := cache.NewInMemoryFactorStore()
		svc := NewFactorConfigService(store, zap.NewNop())
		metrics, reader := newMetrics(t)
		svc.SetMetrics(metrics)

		table := pricing.DefaultFactorTable()
		table[pricing.FactorRegulatedCurrency] = decimal.RequireFromString("36.5")

		resp, err := svc.Update(ctx, ToFactorTableDTO(table))

		require.NoError(t, err)
		assert.True(t, resp.ToDomain().Equal(table))
		assert.True(t, svc.Get(ctx).ToDomain().Equal(table))
		assert.Equal(t, int64(1), counterTotal(t, reader, "pricing_factor_update_total"))
	})

	t.Run("invalid tables leave the stored one untouched", func(t *testing.T) {
		store := cache.NewInMemoryFactorStore()
		svc := NewFactorConfigService(store, nil)

		tests := []struct {
			name   string
			mutate func(FactorTableDTO)
		}{
			{"missing key", func(d FactorTableDTO) { delete(d.Factores, string(pricing.FactorUSD)) }},
			{"unknown key", func(d FactorTableDTO) { d.Factores["EUR"] = decimal.NewFromInt(1) }},
			{"zero factor", func(d FactorTableDTO) { d.Factores[string(pricing.FactorGeneral)] = decimal.Zero }},
			{"negative factor", func(d FactorTableDTO) { d.Factores[string(pricing.FactorWholesale)] = decimal.NewFromInt(-1) }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := ToFactorTableDTO(pricing.DefaultFactorTable())
				tt.mutate(req)

				_, err := svc.Update(ctx, req)

				assert.ErrorIs(t, err, pricing.ErrInvalidFactorTable)
				assert.True(t, svc.Get(ctx).ToDomain().Equal(pricing.DefaultFactorTable()))
			})
		}
	})

	t.Run("store failures are surfaced", func(t *testing.T) {
		svc := NewFactorConfigService(failingFactorStore{}, nil)

		_, err := svc.Update(ctx, ToFactorTableDTO(pricing.DefaultFactorTable()))

		assert.ErrorIs(t, err, pricing.ErrFactorStoreUnavailable)
	})
}
