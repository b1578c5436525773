package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Harsh-BH/dispatch/internal/domain"
)

func newJob(id string) *domain.Job {
	return &domain.Job{
		ID:        id,
		Title:     "Light bulb installation",
		Lat:       17.97,
		Lng:       102.63,
		When:      domain.WhenASAP,
		Price:     50000,
		Status:    domain.JobRequested,
		CreatedAt: time.Now().UTC(),
	}
}

func TestJobRepository_ListNewestFirst(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := repo.Create(ctx, newJob(fmt.Sprintf("J-%d", i))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	jobs, _ := repo.List(ctx)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, want := range []string{"J-3", "J-2", "J-1"} {
		if jobs[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, jobs[i].ID)
		}
	}
}

func TestJobRepository_ReturnsCopies(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	_ = repo.Create(ctx, newJob("J-1"))

	got, _ := repo.GetByID(ctx, "J-1")
	got.AssignedContactKey = "intruder"
	got.Status = domain.JobAccepted

	again, _ := repo.GetByID(ctx, "J-1")
	if !again.IsAvailable() {
		t.Error("mutating a returned job must not change the stored record")
	}
}

func TestJobRepository_AssignNotFound(t *testing.T) {
	repo := NewJobRepository()
	_, err := repo.Assign(context.Background(), "missing", "020555", time.Now())
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobRepository_AssignIsImmutable(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	_ = repo.Create(ctx, newJob("J-1"))

	job, err := repo.Assign(ctx, "J-1", "020111", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != domain.JobAccepted || job.AcceptedAt == nil {
		t.Errorf("expected Accepted with acceptedAt, got %s / %v", job.Status, job.AcceptedAt)
	}

	for _, key := range []string{"020111", "020222"} {
		if _, err := repo.Assign(ctx, "J-1", key, time.Now()); !errors.Is(err, domain.ErrAlreadyAssigned) {
			t.Errorf("claim by %s: expected ErrAlreadyAssigned, got %v", key, err)
		}
	}

	stored, _ := repo.GetByID(ctx, "J-1")
	if stored.AssignedContactKey != "020111" {
		t.Errorf("assignee changed to %s", stored.AssignedContactKey)
	}

	mine, _ := repo.ListAssignedTo(ctx, "020111")
	if len(mine) != 1 {
		t.Errorf("expected 1 assigned job, got %d", len(mine))
	}
}

func TestJobRepository_ConcurrentAssignSingleWinner(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	_ = repo.Create(ctx, newJob("J-race"))

	const racers = 64
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := repo.Assign(ctx, "J-race", fmt.Sprintf("0205%04d", i), time.Now())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrAlreadyAssigned):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins.Load())
	}
	if conflicts.Load() != racers-1 {
		t.Errorf("expected %d conflicts, got %d", racers-1, conflicts.Load())
	}
}
