package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	catalogapp "github.com/nvictorme/nikola-sub002/internal/application/catalog"
	pricingapp "github.com/nvictorme/nikola-sub002/internal/application/pricing"
	tradeapp "github.com/nvictorme/nikola-sub002/internal/application/trade"
)

type MockFactorConfigurator struct {
	mock.Mock
}

func (m *MockFactorConfigurator) Get(ctx context.Context) pricingapp.FactorTableDTO {
	args := m.Called(ctx)
	return args.Get(0).(pricingapp.FactorTableDTO)
}

func (m *MockFactorConfigurator) Update(ctx context.Context, req pricingapp.FactorTableDTO) (*pricingapp.FactorTableDTO, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricingapp.FactorTableDTO), args.Error(1)
}

type MockQuoter struct {
	mock.Mock
}

func (m *MockQuoter) Quote(ctx context.Context, req pricingapp.QuoteRequest) (*pricingapp.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricingapp.QuoteResponse), args.Error(1)
}

type MockOrderPlacer struct {
	mock.Mock
}

func (m *MockOrderPlacer) PlaceOrder(ctx context.Context, req tradeapp.PlaceOrderRequest) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}

func (m *MockOrderPlacer) GetOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}

func (m *MockOrderPlacer) CancelOrder(ctx context.Context, orderID uuid.UUID, req tradeapp.CancelOrderRequest) (*tradeapp.CancelOrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.CancelOrderResponse), args.Error(1)
}

type MockProductPricer struct {
	mock.Mock
}

func (m *MockProductPricer) UpdatePricing(ctx context.Context, productID uuid.UUID, req catalogapp.UpdatePricingRequest) (*catalogapp.ProductPricingResponse, error) {
	args := m.Called(ctx, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductPricingResponse), args.Error(1)
}

func (m *MockProductPricer) History(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]catalogapp.PriceHistoryEntryResponse, error) {
	args := m.Called(ctx, productID, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.PriceHistoryEntryResponse), args.Error(1)
}

func (m *MockProductPricer) DeleteHistoryEntry(ctx context.Context, entryID uuid.UUID) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}
