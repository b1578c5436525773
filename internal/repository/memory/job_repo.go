// Package memory holds the in-process repositories. State lives for the
// lifetime of the process only.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

// Ensure JobRepository implements repository.JobRepository.
var _ repository.JobRepository = (*JobRepository)(nil)

// JobRepository keeps jobs in insertion order; reads walk it backwards so callers see newest first.
type JobRepository struct {
	mu   sync.RWMutex
	jobs []*domain.Job
	byID map[string]*domain.Job
}

// NewJobRepository creates an empty in-memory job store.
func NewJobRepository() *JobRepository {
	return &JobRepository{
		byID: make(map[string]*domain.Job),
	}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := job.Clone()
	r.jobs = append(r.jobs, stored)
	r.byID[stored.ID] = stored
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (r *JobRepository) List(ctx context.Context) ([]*domain.Job, error) {
	return r.filter(func(*domain.Job) bool { return true }), nil
}

func (r *JobRepository) ListAssignedTo(ctx context.Context, contactKey string) ([]*domain.Job, error) {
	return r.filter(func(j *domain.Job) bool {
		return j.AssignedContactKey != "" && j.AssignedContactKey == contactKey
	}), nil
}

// Assign holds the write lock across the check and the set, which linearizes claims.
func (r *JobRepository) Assign(ctx context.Context, id, contactKey string, at time.Time) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if !job.IsAvailable() {
		return nil, domain.ErrAlreadyAssigned
	}

	job.AssignedContactKey = contactKey
	job.Status = domain.JobAccepted
	job.AcceptedAt = &at
	return job.Clone(), nil
}

func (r *JobRepository) filter(keep func(*domain.Job) bool) []*domain.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Job, 0, len(r.jobs))
	for i := len(r.jobs) - 1; i >= 0; i-- {
		if keep(r.jobs[i]) {
			result = append(result, r.jobs[i].Clone())
		}
	}
	return result
}
