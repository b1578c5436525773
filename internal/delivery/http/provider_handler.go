package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/delivery/http/middleware"
	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/usecase"
)

// ProviderHandler exposes the provider registry.
type ProviderHandler struct {
	registry *usecase.ProviderRegistry
	logger   *zap.Logger
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(registry *usecase.ProviderRegistry, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{registry: registry, logger: logger}
}

// Me handles GET /providers/me. An unregistered caller gets a null provider.
func (h *ProviderHandler) Me(c *gin.Context) {
	p, err := h.registry.Get(c.Request.Context(), middleware.ContactKey(c))
	if errors.Is(err, domain.ErrNotRegistered) {
		c.JSON(http.StatusOK, gin.H{"provider": nil})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p})
}

// Register handles POST /providers/register
func (h *ProviderHandler) Register(c *gin.Context) {
	var req domain.RegisterProviderRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.registry.Register(c.Request.Context(), middleware.ContactKey(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p})
}

// Status handles POST /providers/status
func (h *ProviderHandler) Status(c *gin.Context) {
	var req domain.ProviderStatusRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.registry.SetStatus(c.Request.Context(), middleware.ContactKey(c), req.ToUpdate())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p})
}

// bindOptionalJSON binds a body that may be absent entirely.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
