package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	mockpub "github.com/Harsh-BH/dispatch/internal/publisher/mock"
	"github.com/Harsh-BH/dispatch/internal/repository/memory"
)

func TestPlaceOrder_Defaults(t *testing.T) {
	svc := NewOrderService(memory.NewOrderRepository(), mockpub.NewMockPublisher(), zap.NewNop())

	o, err := svc.Place(context.Background(), "020-777", &domain.PlaceOrderRequest{Total: 85000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID[:3] != "OS-" {
		t.Errorf("expected generated OS- id, got %q", o.ID)
	}
	if o.Status != domain.OrderPending || o.Mode != "delivery" || o.When != domain.WhenASAP || o.Name != "Guest" {
		t.Errorf("unexpected defaults %+v", o)
	}
	if o.Grand != 85000 {
		t.Errorf("expected grand to default to total, got %d", o.Grand)
	}
	if o.Phone != "020-777" {
		t.Errorf("expected phone from token, got %q", o.Phone)
	}
	if o.Items == nil {
		t.Error("expected empty item list, got nil")
	}
}

func TestPlaceOrder_ExplicitValues(t *testing.T) {
	svc := NewOrderService(memory.NewOrderRepository(), mockpub.NewMockPublisher(), zap.NewNop())
	grand := int64(0)

	o, err := svc.Place(context.Background(), "020-777", &domain.PlaceOrderRequest{
		ID:    "OS-FIXED",
		Total: 100,
		Grand: &grand,
		Mode:  "pickup",
		Phone: "020-888",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID != "OS-FIXED" || o.Grand != 0 || o.Mode != "pickup" || o.Phone != "020-888" {
		t.Errorf("expected explicit values to win, got %+v", o)
	}
}

func TestListMine(t *testing.T) {
	svc := NewOrderService(memory.NewOrderRepository(), mockpub.NewMockPublisher(), zap.NewNop())
	ctx := context.Background()

	first, _ := svc.Place(ctx, "020-1", &domain.PlaceOrderRequest{})
	_, _ = svc.Place(ctx, "020-2", &domain.PlaceOrderRequest{})
	second, _ := svc.Place(ctx, "020-1", &domain.PlaceOrderRequest{})

	mine, err := svc.ListMine(ctx, "020-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != second.ID || mine[1].ID != first.ID {
		t.Fatalf("expected own orders newest first, got %+v", mine)
	}

	all, _ := svc.List(ctx)
	if len(all) != 3 {
		t.Errorf("expected 3 orders, got %d", len(all))
	}

	if _, err := svc.ListMine(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	pub := mockpub.NewMockPublisher()
	svc := NewOrderService(memory.NewOrderRepository(), pub, zap.NewNop())
	ctx := context.Background()

	o, _ := svc.Place(ctx, "", &domain.PlaceOrderRequest{})

	paid, err := svc.ConfirmPayment(ctx, o.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != domain.OrderConfirmed || paid.PaidAt == nil {
		t.Errorf("expected confirmed order with paidAt, got %+v", paid)
	}
	if n := len(pub.OfType(domain.EventOrderUpdate)); n != 1 {
		t.Errorf("expected 1 order:update event, got %d", n)
	}

	if _, err := svc.ConfirmPayment(ctx, "OS-NOPE", "Confirmed"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}
