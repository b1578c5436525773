package memory

import (
	"context"
	"sync"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

var _ repository.ProviderRepository = (*ProviderRepository)(nil)

// ProviderRepository is a map of providers keyed by contact key.
type ProviderRepository struct {
	mu        sync.RWMutex
	providers map[string]*domain.Provider
}

// NewProviderRepository creates an empty in-memory provider store.
func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{
		providers: make(map[string]*domain.Provider),
	}
}

func (r *ProviderRepository) Upsert(ctx context.Context, p *domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ContactKey] = p.Clone()
	return nil
}

func (r *ProviderRepository) Update(ctx context.Context, contactKey string, upd domain.ProviderStatusUpdate) (*domain.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[contactKey]
	if !ok {
		return nil, domain.ErrNotRegistered
	}

	if upd.Online != nil {
		p.Online = *upd.Online
	}
	if upd.Lat != nil {
		p.Lat = *upd.Lat
	}
	if upd.Lng != nil {
		p.Lng = *upd.Lng
	}
	return p.Clone(), nil
}

func (r *ProviderRepository) Get(ctx context.Context, contactKey string) (*domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[contactKey]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	return p.Clone(), nil
}

func (r *ProviderRepository) CountOnline(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.providers {
		if p.Online {
			n++
		}
	}
	return n, nil
}
