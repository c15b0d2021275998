package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	pricingapp "github.com/nvictorme/nikola-sub002/internal/application/pricing"
)

// FactorConfigurator is the part of FactorConfigService the handler uses
type FactorConfigurator interface {
	Get(ctx context.Context) pricingapp.FactorTableDTO
	Update(ctx context.Context, req pricingapp.FactorTableDTO) (*pricingapp.FactorTableDTO, error)
}

// FactorConfigHandler serves the factor table configuration
type FactorConfigHandler struct {
	BaseHandler
	factors FactorConfigurator
}

// NewFactorConfigHandler creates a new FactorConfigHandler
func NewFactorConfigHandler(factors FactorConfigurator) *FactorConfigHandler {
	return &FactorConfigHandler{factors: factors}
}

// Get handles GET /config/factores. It always answers 200: when nothing is
// stored or the cache is down the default table is returned.
func (h *FactorConfigHandler) Get(c *gin.Context) {
	h.Success(c, h.factors.Get(c.Request.Context()))
}

// Update handles PUT /config/factores with body {"factores": {...}}
func (h *FactorConfigHandler) Update(c *gin.Context) {
	var req pricingapp.FactorTableDTO
	if !h.BindJSON(c, &req) {
		return
	}

	stored, err := h.factors.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stored)
}
