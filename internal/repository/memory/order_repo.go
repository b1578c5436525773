package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository keeps orders in insertion order and lists them newest first.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []*domain.Order
	byID   map[string]*domain.Order
}

// NewOrderRepository creates an empty in-memory order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		byID: make(map[string]*domain.Order),
	}
}

// Create stores the order. A client-supplied id that already exists replaces the
// index entry so lookups resolve to the newest order, as the storefront expects.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := order.Clone()
	r.orders = append(r.orders, stored)
	r.byID[stored.ID] = stored
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.filter(func(*domain.Order) bool { return true }), nil
}

func (r *OrderRepository) ListByPhone(ctx context.Context, phone string) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.Phone == phone }), nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id, status string, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = status
	o.PaidAt = &at
	return o.Clone(), nil
}

func (r *OrderRepository) filter(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		if keep(r.orders[i]) {
			result = append(result, r.orders[i].Clone())
		}
	}
	return result
}
