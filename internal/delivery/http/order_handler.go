package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/delivery/http/middleware"
	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/usecase"
)

// OrderHandler handles storefront orders.
type OrderHandler struct {
	orders *usecase.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *usecase.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// List handles GET /orders and GET /orders?mine=1
func (h *OrderHandler) List(c *gin.Context) {
	var (
		orders []*domain.Order
		err    error
	)
	if c.Query("mine") == "1" {
		orders, err = h.orders.ListMine(c.Request.Context(), middleware.ContactKey(c))
	} else {
		orders, err = h.orders.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Place handles POST /orders
func (h *OrderHandler) Place(c *gin.Context) {
	var req domain.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.Place(c.Request.Context(), middleware.ContactKey(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
