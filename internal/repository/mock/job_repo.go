package mock

import (
	"context"
	"time"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
	"github.com/Harsh-BH/dispatch/internal/repository/memory"
)

// Ensure MockJobRepository implements repository.JobRepository.
var _ repository.JobRepository = (*MockJobRepository)(nil)

// MockJobRepository wraps the in-memory store and lets tests inject failures.
type MockJobRepository struct {
	inner *memory.JobRepository

	// Hook functions for injecting errors
	CreateFunc  func(ctx context.Context, job *domain.Job) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Job, error)
	ListFunc    func(ctx context.Context) ([]*domain.Job, error)
	AssignFunc  func(ctx context.Context, id, contactKey string, at time.Time) (*domain.Job, error)
}

// NewMockJobRepository creates a new mock repository.
func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		inner: memory.NewJobRepository(),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *domain.Job) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, job)
	}
	return m.inner.Create(ctx, job)
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return m.inner.GetByID(ctx, id)
}

func (m *MockJobRepository) List(ctx context.Context) ([]*domain.Job, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return m.inner.List(ctx)
}

func (m *MockJobRepository) ListAssignedTo(ctx context.Context, contactKey string) ([]*domain.Job, error) {
	return m.inner.ListAssignedTo(ctx, contactKey)
}

func (m *MockJobRepository) Assign(ctx context.Context, id, contactKey string, at time.Time) (*domain.Job, error) {
	if m.AssignFunc != nil {
		return m.AssignFunc(ctx, id, contactKey, at)
	}
	return m.inner.Assign(ctx, id, contactKey, at)
}

// GetAll returns all stored jobs (for test assertions).
func (m *MockJobRepository) GetAll() []*domain.Job {
	jobs, _ := m.inner.List(context.Background())
	return jobs
}
