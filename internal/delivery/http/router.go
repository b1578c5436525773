package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/catalog"
	"github.com/Harsh-BH/dispatch/internal/delivery/http/middleware"
	"github.com/Harsh-BH/dispatch/internal/hub"
	"github.com/Harsh-BH/dispatch/internal/usecase"
)

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Logger    *zap.Logger
	Hub       *hub.Hub
	Catalog   *catalog.Catalog
	Auth      *usecase.AuthService
	Orders    *usecase.OrderService
	Payments  PaymentScheduler
	Providers *usecase.ProviderRegistry
	Dispatch  *usecase.DispatchEngine

	HealthChecks    map[string]HealthCheck
	RateLimitPerMin int
	BodyLimit       int64
}

// NewRouter creates and configures the Gin router with all routes and middleware.
// Every route is served both at the root and under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	useCustomValidators()

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.BodySizeLimit(deps.BodyLimit))
	router.Use(middleware.Auth(deps.Auth))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers{
		health:    NewHealthHandler(deps.HealthChecks, deps.Logger),
		catalog:   NewCatalogHandler(deps.Catalog),
		auth:      NewAuthHandler(deps.Auth, deps.Logger),
		orders:    NewOrderHandler(deps.Orders, deps.Logger),
		payments:  NewPaymentHandler(deps.Orders, deps.Payments, deps.Logger),
		providers: NewProviderHandler(deps.Providers, deps.Logger),
		jobs:      NewJobHandler(deps.Dispatch, deps.Logger),
		events:    NewEventsHandler(deps.Hub, deps.Logger),
		ws:        NewWebSocketHandler(deps.Hub, deps.Logger),
		limit:     middleware.RateLimiter(deps.RateLimitPerMin),
	}

	h.register(&router.RouterGroup)
	h.register(router.Group("/api/v1"))

	return router
}

type handlers struct {
	health    *HealthHandler
	catalog   *CatalogHandler
	auth      *AuthHandler
	orders    *OrderHandler
	payments  *PaymentHandler
	providers *ProviderHandler
	jobs      *JobHandler
	events    *EventsHandler
	ws        *WebSocketHandler
	limit     gin.HandlerFunc
}

func (h handlers) register(rg *gin.RouterGroup) {
	// Health and live streams are not rate limited.
	rg.GET("/health", h.health.Health)
	rg.GET("/events", h.events.Stream)
	rg.GET("/ws", h.ws.Stream)

	api := rg.Group("", h.limit)
	{
		api.GET("/stores", h.catalog.Stores)
		api.GET("/inventory", h.catalog.Inventory)
		api.GET("/nearby", h.catalog.Nearby)

		api.POST("/auth/request-otp", h.auth.RequestOTP)
		api.POST("/auth/verify-otp", h.auth.VerifyOTP)
		api.GET("/me", middleware.RequireIdentity(), h.auth.Me)

		api.GET("/orders", h.orders.List)
		api.POST("/orders", h.orders.Place)

		api.POST("/payments/simulate", h.payments.Simulate)
		api.POST("/payments/webhook", h.payments.Webhook)

		authed := api.Group("", middleware.RequireIdentity())
		authed.GET("/providers/me", h.providers.Me)
		authed.POST("/providers/register", h.providers.Register)
		authed.POST("/providers/status", h.providers.Status)

		api.GET("/jobs", h.jobs.List)
		authed.POST("/jobs", h.jobs.Create)
		authed.POST("/jobs/demo", h.jobs.Demo)
		authed.POST("/jobs/claim", h.jobs.Claim)
	}
}
