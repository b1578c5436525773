package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/catalog"
	"github.com/Harsh-BH/dispatch/internal/config"
	handler "github.com/Harsh-BH/dispatch/internal/delivery/http"
	"github.com/Harsh-BH/dispatch/internal/hub"
	"github.com/Harsh-BH/dispatch/internal/payment"
	"github.com/Harsh-BH/dispatch/internal/pool"
	"github.com/Harsh-BH/dispatch/internal/relay"
	"github.com/Harsh-BH/dispatch/internal/repository"
	"github.com/Harsh-BH/dispatch/internal/repository/memory"
	"github.com/Harsh-BH/dispatch/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/dispatch/internal/repository/redis"
	"github.com/Harsh-BH/dispatch/internal/scheduler"
	"github.com/Harsh-BH/dispatch/internal/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if cfg.Server.GinMode == gin.DebugMode {
		logger, _ = zap.NewDevelopment()
	}
	gin.SetMode(cfg.Server.GinMode)

	instanceID := cfg.RabbitMQ.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	logger = logger.With(zap.String("instance_id", instanceID))
	logger.Info("Starting dispatch server",
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("relay", cfg.RelayEnabled()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handler.HealthCheck{}

	// Provider and job storage
	var (
		providerRepo repository.ProviderRepository
		jobRepo      repository.JobRepository
	)
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer dbPool.Close()

		if err := dbPool.Ping(ctx); err != nil {
			logger.Fatal("Failed to ping PostgreSQL", zap.Error(err))
		}
		if err := postgres.Migrate(ctx, dbPool); err != nil {
			logger.Fatal("Failed to migrate schema", zap.Error(err))
		}
		logger.Info("Connected to PostgreSQL")

		providerRepo = postgres.NewPostgresProviderRepository(dbPool)
		jobRepo = postgres.NewPostgresJobRepository(dbPool)
		checks["postgres"] = dbPool.Ping
	default:
		providerRepo = memory.NewProviderRepository()
		jobRepo = memory.NewJobRepository()
	}

	// Session storage
	var sessionRepo repository.SessionRepository
	switch cfg.Session.Backend {
	case config.BackendRedis:
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to parse Redis URL", zap.Error(err))
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to ping Redis", zap.Error(err))
		}
		logger.Info("Connected to Redis")

		sessionRepo = redisrepo.NewRedisSessionRepository(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		sessionRepo = memory.NewSessionRepository()
	}

	// Broadcast hub, optionally relayed across instances
	eventHub := hub.New(instanceID, cfg.Hub.SubscriberBuffer, logger)

	if cfg.RelayEnabled() {
		pub, err := relay.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to initialize relay publisher", zap.Error(err))
		}
		defer pub.Close()
		eventHub.AddSink(pub)

		consumer, err := relay.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, instanceID, eventHub.Deliver, logger)
		if err != nil {
			logger.Fatal("Failed to initialize relay consumer", zap.Error(err))
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error("Relay consumer error", zap.Error(err))
			}
		}()
		logger.Info("Connected to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	// Initialize use cases
	authService := usecase.NewAuthService(sessionRepo, cfg.Session.OTPTTL, cfg.Session.TokenTTL, logger)
	orderService := usecase.NewOrderService(memory.NewOrderRepository(), eventHub, logger)
	registry := usecase.NewProviderRegistry(providerRepo, eventHub, logger)
	engine := usecase.NewDispatchEngine(jobRepo, providerRepo, eventHub, logger)

	// Payment simulation runs on the worker pool
	tasks := make(chan *pool.Task, cfg.Payment.Workers*2)
	workerPool := pool.NewWorkerPool(cfg.Payment.Workers, tasks, logger)
	workerPool.Start(ctx)
	simulator := payment.NewSimulator(orderService, tasks, cfg.Payment.DefaultDelay, logger)

	housekeeping := scheduler.New(cfg.Housekeeping.Spec, authService, providerRepo, logger)
	if err := housekeeping.Start(ctx); err != nil {
		logger.Fatal("Failed to start housekeeping", zap.Error(err))
	}

	// Initialize router
	router := handler.NewRouter(handler.RouterDeps{
		Logger:          logger,
		Hub:             eventHub,
		Catalog:         catalog.New(),
		Auth:            authService,
		Orders:          orderService,
		Payments:        simulator,
		Providers:       registry,
		Dispatch:        engine,
		HealthChecks:    checks,
		RateLimitPerMin: cfg.Server.RateLimit,
		BodyLimit:       cfg.Server.BodyLimit,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	// Ending the streams first lets Shutdown finish without waiting on them.
	eventHub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	housekeeping.Stop()
	simulator.Stop()
	cancel()
	workerPool.Stop()

	logger.Info("API server stopped")
}
