package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

const (
	defaultOrderMode = "delivery"
	defaultGuestName = "Guest"
)

// OrderService handles storefront orders and their payment confirmation.
type OrderService struct {
	repo   repository.OrderRepository
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(repo repository.OrderRepository, events EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Place stores a new order, filling storefront defaults. callerPhone is the
// authenticated phone, if any, and is used when the body carries none.
func (s *OrderService) Place(ctx context.Context, callerPhone string, req *domain.PlaceOrderRequest) (*domain.Order, error) {
	o := &domain.Order{
		ID:        strings.TrimSpace(req.ID),
		CreatedAt: s.now(),
		Status:    req.Status,
		Total:     req.Total,
		Grand:     req.Total,
		Fee:       req.Fee,
		Discount:  req.Discount,
		Mode:      req.Mode,
		When:      req.When,
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Addr:      req.Addr,
		Items:     req.Items,
	}
	if o.ID == "" {
		o.ID = newID("OS-")
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if req.Grand != nil {
		o.Grand = *req.Grand
	}
	if o.Mode == "" {
		o.Mode = defaultOrderMode
	}
	if o.When == "" {
		o.When = domain.WhenASAP
	}
	if o.Name == "" {
		o.Name = defaultGuestName
	}
	if o.Phone == "" {
		o.Phone = callerPhone
	}
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.logger.Error("Failed to store order", zap.Error(err), zap.String("order_id", o.ID))
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", o.ID),
		zap.Int64("grand", o.Grand),
		zap.Int("items", len(o.Items)),
	)
	return o, nil
}

// List returns every order, newest first.
func (s *OrderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// ListMine returns the orders placed under phone.
func (s *OrderService) ListMine(ctx context.Context, phone string) ([]*domain.Order, error) {
	if phone == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.ListByPhone(ctx, phone)
}

// ConfirmPayment marks the order paid with status (Confirmed when empty) and
// broadcasts the result. Both the webhook and the simulator land here.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if status == "" {
		status = domain.OrderConfirmed
	}

	o, err := s.repo.MarkPaid(ctx, orderID, status, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order paid",
		zap.String("order_id", o.ID),
		zap.String("status", o.Status),
	)

	s.events.Publish(domain.EventOrderUpdate, o)
	return o, nil
}
