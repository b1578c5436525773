package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/metrics"
)

func gaugeValue(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.ProvidersOnline.Write(&m); err != nil {
		t.Fatalf("read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

type fakePruner struct {
	calls atomic.Int32
	err   error
}

func (f *fakePruner) Prune(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

type fakeCounter struct {
	online int
	err    error
}

func (f *fakeCounter) CountOnline(ctx context.Context) (int, error) {
	return f.online, f.err
}

func TestRunOnce_RefreshesGauge(t *testing.T) {
	pruner := &fakePruner{}
	h := New("@every 1h", pruner, &fakeCounter{online: 7}, zap.NewNop())

	h.RunOnce(context.Background())

	if pruner.calls.Load() != 1 {
		t.Errorf("expected 1 prune, got %d", pruner.calls.Load())
	}
	if got := gaugeValue(t); got != 7 {
		t.Errorf("expected gauge 7, got %v", got)
	}
}

func TestRunOnce_PruneErrorStillCounts(t *testing.T) {
	h := New("@every 1h", &fakePruner{err: errors.New("redis down")}, &fakeCounter{online: 3}, zap.NewNop())

	h.RunOnce(context.Background())

	if got := gaugeValue(t); got != 3 {
		t.Errorf("expected gauge 3, got %v", got)
	}
}

func TestRunOnce_CancelledContext(t *testing.T) {
	pruner := &fakePruner{}
	h := New("@every 1h", pruner, &fakeCounter{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.RunOnce(ctx)

	if pruner.calls.Load() != 0 {
		t.Errorf("expected no work on cancelled context")
	}
}

func TestStart_RunsImmediately(t *testing.T) {
	pruner := &fakePruner{}
	h := New("@every 1h", pruner, &fakeCounter{}, zap.NewNop())

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for pruner.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if pruner.calls.Load() == 0 {
		t.Error("expected an initial pass on start")
	}
}

func TestStart_BadSpec(t *testing.T) {
	h := New("not a spec", &fakePruner{}, &fakeCounter{}, zap.NewNop())
	if err := h.Start(context.Background()); err == nil {
		t.Error("expected error for invalid spec")
	}
	h.Stop()
}
