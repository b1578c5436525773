// Package scheduler runs periodic housekeeping on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/metrics"
)

// Pruner drops expired session state.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// OnlineCounter reports how many providers are online.
type OnlineCounter interface {
	CountOnline(ctx context.Context) (int, error)
}

// Housekeeping prunes expired OTPs and tokens and refreshes the online
// providers gauge.
type Housekeeping struct {
	cron      *cron.Cron
	spec      string
	sessions  Pruner
	providers OnlineCounter
	logger    *zap.Logger

	mu      sync.Mutex
	started bool
}

// New creates a Housekeeping runner for a standard cron spec such as "@every 1m".
func New(spec string, sessions Pruner, providers OnlineCounter, logger *zap.Logger) *Housekeeping {
	return &Housekeeping{
		cron:      cron.New(),
		spec:      spec,
		sessions:  sessions,
		providers: providers,
		logger:    logger,
	}
}

// Start registers the job, starts the cron loop and runs one pass immediately.
func (h *Housekeeping) Start(ctx context.Context) error {
	if _, err := h.cron.AddFunc(h.spec, func() { h.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	h.mu.Lock()
	h.started = true
	h.mu.Unlock()

	h.cron.Start()
	h.logger.Info("Housekeeping started", zap.String("spec", h.spec))

	go h.RunOnce(ctx)
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (h *Housekeeping) Stop() {
	h.mu.Lock()
	started := h.started
	h.started = false
	h.mu.Unlock()

	if !started {
		return
	}
	<-h.cron.Stop().Done()
	h.logger.Info("Housekeeping stopped")
}

// RunOnce performs a single housekeeping pass.
func (h *Housekeeping) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	removed, err := h.sessions.Prune(ctx)
	if err != nil {
		h.logger.Warn("Session prune failed", zap.Error(err))
	} else if removed > 0 {
		h.logger.Debug("Pruned expired sessions", zap.Int("removed", removed))
	}

	online, err := h.providers.CountOnline(ctx)
	if err != nil {
		h.logger.Warn("Counting online providers failed", zap.Error(err))
		return
	}
	metrics.ProvidersOnline.Set(float64(online))
}
