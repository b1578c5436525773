package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/config"
	"github.com/Harsh-BH/dispatch/internal/hub"
	"github.com/Harsh-BH/dispatch/internal/relay"
)

// The worker tails the relay exchange: it logs every event published by any
// server instance and exposes relay counters on /metrics.
func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting dispatch relay worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if !cfg.RelayEnabled() {
		logger.Fatal("RABBITMQ_URL is required for the relay worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// An empty origin receives events from every instance.
	consumer, err := relay.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "", func(evt hub.Event) {
		logger.Info("Relayed event",
			zap.String("type", evt.Type),
			zap.String("origin", evt.Origin),
			zap.Time("timestamp", evt.Timestamp),
			zap.Int("bytes", len(evt.Data)),
		)
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize relay consumer", zap.Error(err))
	}
	defer consumer.Close()
	logger.Info("Connected to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error("Relay consumer error", zap.Error(err))
			cancel()
		}
	}()

	// Start Prometheus metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics server listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal or consumer failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("Shutting down worker...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	logger.Info("Worker stopped")
}
