package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	pricingapp "github.com/nvictorme/nikola-sub002/internal/application/pricing"
)

// Quoter prices a single line without placing an order
type Quoter interface {
	Quote(ctx context.Context, req pricingapp.QuoteRequest) (*pricingapp.QuoteResponse, error)
}

// QuoteHandler serves price quotes
type QuoteHandler struct {
	BaseHandler
	quotes Quoter
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quotes Quoter) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Quote handles POST /pricing/quote
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req pricingapp.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quote, err := h.quotes.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
