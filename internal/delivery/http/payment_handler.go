package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/usecase"
)

// PaymentScheduler defers a payment confirmation. payment.Simulator satisfies it.
type PaymentScheduler interface {
	Schedule(orderID string, delay time.Duration)
	Cancel(orderID string) bool
	DefaultDelay() time.Duration
}

// PaymentHandler handles simulated payments and the provider webhook.
type PaymentHandler struct {
	orders    *usecase.OrderService
	scheduler PaymentScheduler
	logger    *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(orders *usecase.OrderService, scheduler PaymentScheduler, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{orders: orders, scheduler: scheduler, logger: logger}
}

// Simulate handles POST /payments/simulate. It answers immediately; the
// confirmation is broadcast as order:update when it lands.
func (h *PaymentHandler) Simulate(c *gin.Context) {
	var req domain.SimulatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	delay := h.scheduler.DefaultDelay()
	if req.DelayMs != nil {
		delay = time.Duration(*req.DelayMs) * time.Millisecond
	}
	h.scheduler.Schedule(req.ID, delay)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Webhook handles POST /payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req domain.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.ConfirmPayment(c.Request.Context(), req.ID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if h.scheduler.Cancel(req.ID) {
		h.logger.Debug("Pending simulation superseded by webhook", zap.String("order_id", req.ID))
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}
