package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/nvictorme/nikola-sub002/internal/application/catalog"
)

// ProductPricer is the part of ProductPricingService the handler uses
type ProductPricer interface {
	UpdatePricing(ctx context.Context, productID uuid.UUID, req catalogapp.UpdatePricingRequest) (*catalogapp.ProductPricingResponse, error)
	History(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]catalogapp.PriceHistoryEntryResponse, error)
	DeleteHistoryEntry(ctx context.Context, entryID uuid.UUID) error
}

// ProductPricingHandler handles product price maintenance and history
type ProductPricingHandler struct {
	BaseHandler
	pricing ProductPricer
}

// NewProductPricingHandler creates a new ProductPricingHandler
func NewProductPricingHandler(pricing ProductPricer) *ProductPricingHandler {
	return &ProductPricingHandler{pricing: pricing}
}

// UpdatePricing handles PUT /products/:id/pricing
func (h *ProductPricingHandler) UpdatePricing(c *gin.Context) {
	productID, ok := h.ParseID(c, "id", "product")
	if !ok {
		return
	}

	var req catalogapp.UpdatePricingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.pricing.UpdatePricing(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// History handles GET /products/:id/price-history?include_deleted=true
func (h *ProductPricingHandler) History(c *gin.Context) {
	productID, ok := h.ParseID(c, "id", "product")
	if !ok {
		return
	}

	includeDeleted := false
	if raw := c.Query("include_deleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "include_deleted must be a boolean")
			return
		}
		includeDeleted = v
	}

	entries, err := h.pricing.History(c.Request.Context(), productID, includeDeleted)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// DeleteHistoryEntry handles DELETE /price-history/:id. The entry is
// hidden, not removed.
func (h *ProductPricingHandler) DeleteHistoryEntry(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id", "price history entry")
	if !ok {
		return
	}

	if err := h.pricing.DeleteHistoryEntry(c.Request.Context(), entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
