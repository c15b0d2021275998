package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/nvictorme/nikola-sub002/internal/application/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
)

func newProductPricingRouter(svc ProductPricer) *gin.Engine {
	h := NewProductPricingHandler(svc)
	return newTestRouter(func(r *gin.Engine) {
		r.PUT("/products/:id/pricing", h.UpdatePricing)
		r.GET("/products/:id/price-history", h.History)
		r.DELETE("/price-history/:id", h.DeleteHistoryEntry)
	})
}

func TestProductPricingHandler_UpdatePricing(t *testing.T) {
	productID := uuid.New()

	t.Run("updates tiers", func(t *testing.T) {
		svc := new(MockProductPricer)
		svc.On("UpdatePricing", mock.Anything, productID, mock.MatchedBy(func(req catalogapp.UpdatePricingRequest) bool {
			return req.Tiers != nil && req.Tiers.General.Equal(decimal.NewFromInt(120)) && req.Tiers.Wholesale == nil
		})).Return(&catalogapp.ProductPricingResponse{ID: productID, Changed: true, HistoryRecorded: true, Version: 2}, nil)

		w := doJSON(t, newProductPricingRouter(svc), http.MethodPut, "/products/"+productID.String()+"/pricing",
			`{"tiers":{"general":"120","installer":"110"}}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.ProductPricingResponse
		decodeData(t, w, &got)
		assert.True(t, got.HistoryRecorded)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("offer dates must be YYYY-MM-DD", func(t *testing.T) {
		svc := new(MockProductPricer)

		w := doJSON(t, newProductPricingRouter(svc), http.MethodPut, "/products/"+productID.String()+"/pricing",
			`{"offer":{"active":true,"price":"50","start":"01/05/2024","end":"2024-05-31"}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdatePricing", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed offer from the domain answers 400", func(t *testing.T) {
		svc := new(MockProductPricer)
		svc.On("UpdatePricing", mock.Anything, productID, mock.Anything).Return(nil, pricing.ErrInvalidOffer)

		w := doJSON(t, newProductPricingRouter(svc), http.MethodPut, "/products/"+productID.String()+"/pricing",
			`{"offer":{"active":true,"price":"50","start":"2024-05-10","end":"2024-05-01"}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_OFFER", decodeResponse(t, w).Error.Code)
	})

	t.Run("stale version answers 409", func(t *testing.T) {
		svc := new(MockProductPricer)
		svc.On("UpdatePricing", mock.Anything, productID, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)

		w := doJSON(t, newProductPricingRouter(svc), http.MethodPut, "/products/"+productID.String()+"/pricing",
			`{"cost":"61","version":3}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestProductPricingHandler_History(t *testing.T) {
	productID := uuid.New()
	entries := []catalogapp.PriceHistoryEntryResponse{
		{ID: uuid.New(), ProductID: productID, Cost: decimal.NewFromInt(60), Price: decimal.NewFromInt(100)},
	}

	t.Run("hides deleted entries by default", func(t *testing.T) {
		svc := new(MockProductPricer)
		svc.On("History", mock.Anything, productID, false).Return(entries, nil)

		w := doJSON(t, newProductPricingRouter(svc), http.MethodGet, "/products/"+productID.String()+"/price-history", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got []catalogapp.PriceHistoryEntryResponse
		decodeData(t, w, &got)
		assert.Len(t, got, 1)
	})

	t.Run("include_deleted=true", func(t *testing.T) {
		svc := new(MockProductPricer)
		svc.On("History", mock.Anything, productID, true).Return(entries, nil)

		w := doJSON(t, newProductPricingRouter(svc), http.MethodGet, "/products/"+productID.String()+"/price-history?include_deleted=true", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad flag", func(t *testing.T) {
		w := doJSON(t, newProductPricingRouter(new(MockProductPricer)), http.MethodGet,
			"/products/"+productID.String()+"/price-history?include_deleted=maybe", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductPricingHandler_DeleteHistoryEntry(t *testing.T) {
	entryID := uuid.New()
	svc := new(MockProductPricer)
	svc.On("DeleteHistoryEntry", mock.Anything, entryID).Return(nil)
	missing := uuid.New()
	svc.On("DeleteHistoryEntry", mock.Anything, missing).Return(shared.ErrNotFound)
	r := newProductPricingRouter(svc)

	w := doJSON(t, r, http.MethodDelete, "/price-history/"+entryID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/price-history/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
