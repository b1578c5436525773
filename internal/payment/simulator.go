// Package payment simulates asynchronous payment confirmation for storefront orders.
package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/metrics"
	"github.com/Harsh-BH/dispatch/internal/pool"
)

// MinDelay is the shortest delay a simulation can be scheduled with.
const MinDelay = time.Millisecond

// Confirmer completes a payment. OrderService satisfies it.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, orderID, status string) (*domain.Order, error)
}

type scheduled struct {
	timer *time.Timer
}

// Simulator schedules delayed confirmations and hands them to the worker
// pool when they fire. A pending confirmation can be cancelled until then.
type Simulator struct {
	confirm      Confirmer
	tasks        chan<- *pool.Task
	defaultDelay time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	pending map[string]*scheduled
	stopped bool
	done    chan struct{}
}

// NewSimulator creates a Simulator that submits confirmations to tasks.
func NewSimulator(confirm Confirmer, tasks chan<- *pool.Task, defaultDelay time.Duration, logger *zap.Logger) *Simulator {
	if defaultDelay < MinDelay {
		defaultDelay = MinDelay
	}
	return &Simulator{
		confirm:      confirm,
		tasks:        tasks,
		defaultDelay: defaultDelay,
		logger:       logger,
		pending:      make(map[string]*scheduled),
		done:         make(chan struct{}),
	}
}

// DefaultDelay returns the delay used when a request does not carry one.
func (s *Simulator) DefaultDelay() time.Duration {
	return s.defaultDelay
}

// Schedule arranges for orderID to be confirmed after delay. Rescheduling an
// order replaces its pending confirmation. Order existence is checked when the
// confirmation runs, not here.
func (s *Simulator) Schedule(orderID string, delay time.Duration) {
	if delay < MinDelay {
		delay = MinDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.pending[orderID]; ok {
		prev.timer.Stop()
	}

	entry := &scheduled{}
	entry.timer = time.AfterFunc(delay, func() { s.fire(orderID, entry) })
	s.pending[orderID] = entry

	metrics.PaymentTasksTotal.WithLabelValues("scheduled").Inc()
	s.logger.Debug("Payment simulation scheduled",
		zap.String("order_id", orderID),
		zap.Duration("delay", delay),
	)
}

// Cancel drops the pending confirmation for orderID and reports whether one existed.
func (s *Simulator) Cancel(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[orderID]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(s.pending, orderID)
	metrics.PaymentTasksTotal.WithLabelValues("cancelled").Inc()
	return true
}

// Pending returns the number of confirmations waiting for their timer.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending confirmation. Later calls to Schedule are ignored.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
	for id, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *Simulator) fire(orderID string, entry *scheduled) {
	s.mu.Lock()
	current, ok := s.pending[orderID]
	if !ok || current != entry {
		s.mu.Unlock()
		return
	}
	delete(s.pending, orderID)
	s.mu.Unlock()

	task := &pool.Task{
		Name: "payment:" + orderID,
		Run: func(ctx context.Context) error {
			_, err := s.confirm.ConfirmPayment(ctx, orderID, domain.OrderConfirmed)
			return err
		},
		Done: func(err error) {
			switch {
			case err == nil:
				metrics.PaymentTasksTotal.WithLabelValues("confirmed").Inc()
				s.logger.Info("Simulated payment confirmed", zap.String("order_id", orderID))
			case errors.Is(err, domain.ErrOrderNotFound):
				metrics.PaymentTasksTotal.WithLabelValues("missing").Inc()
				s.logger.Debug("Simulated payment for unknown order", zap.String("order_id", orderID))
			default:
				metrics.PaymentTasksTotal.WithLabelValues("failed").Inc()
			}
		},
	}

	select {
	case s.tasks <- task:
	case <-s.done:
	}
}
