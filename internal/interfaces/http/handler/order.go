package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tradeapp "github.com/nvictorme/nikola-sub002/internal/application/trade"
)

// OrderPlacer is the part of OrderService the handler uses
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req tradeapp.PlaceOrderRequest) (*tradeapp.OrderResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, req tradeapp.CancelOrderRequest) (*tradeapp.CancelOrderResponse, error)
}

// OrderHandler handles order placement and cancellation
type OrderHandler struct {
	BaseHandler
	orders OrderPlacer
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderPlacer) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Place handles POST /orders. A credit decline answers 422 CREDIT_DECLINED
// and nothing is stored.
func (h *OrderHandler) Place(c *gin.Context) {
	var req tradeapp.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /orders/:id/cancel. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id", "order")
	if !ok {
		return
	}

	var req tradeapp.CancelOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.orders.CancelOrder(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
