package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/metrics"
)

// Task is a unit of deferred work. Run receives the pool context and should
// return promptly once it is cancelled.
type Task struct {
	Name string
	Run  func(ctx context.Context) error

	// Done, if set, is called with Run's result (or the recovered panic).
	Done func(err error)
}

// WorkerPool manages a fixed-size pool of goroutines that process tasks.
type WorkerPool struct {
	size   int
	tasks  <-chan *Task
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewWorkerPool creates a new fixed-size worker pool.
func NewWorkerPool(size int, tasks <-chan *Task, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:   size,
		tasks:  tasks,
		logger: logger,
	}
}

// Start launches all worker goroutines. Call Stop to wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for all workers to finish their current tasks and exit.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker shutting down", zap.Int("worker_id", id))
			return
		case task, ok := <-p.tasks:
			if !ok {
				p.logger.Debug("Task channel closed", zap.Int("worker_id", id))
				return
			}
			p.execute(ctx, id, task)
		}
	}
}

func (p *WorkerPool) execute(ctx context.Context, id int, task *Task) {
	metrics.WorkersActive.Inc()
	startTime := time.Now()

	var err error
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", id),
				zap.String("task", task.Name),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
		metrics.WorkersActive.Dec()

		if err != nil {
			p.logger.Warn("Task failed",
				zap.Int("worker_id", id),
				zap.String("task", task.Name),
				zap.Duration("elapsed", time.Since(startTime)),
				zap.Error(err),
			)
		} else {
			p.logger.Debug("Task completed",
				zap.Int("worker_id", id),
				zap.String("task", task.Name),
				zap.Duration("elapsed", time.Since(startTime)),
			)
		}
		if task.Done != nil {
			task.Done(err)
		}
	}()

	err = task.Run(ctx)
}
