package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	mockpub "github.com/Harsh-BH/dispatch/internal/publisher/mock"
	"github.com/Harsh-BH/dispatch/internal/repository/memory"
)

func boolPtr(v bool) *bool { return &v }

func TestRegister_Defaults(t *testing.T) {
	repo := memory.NewProviderRepository()
	pub := mockpub.NewMockPublisher()
	reg := NewProviderRegistry(repo, pub, zap.NewNop())

	p, err := reg.Register(context.Background(), "020-555", &domain.RegisterProviderRequest{
		Skills: []string{" plumbing ", "", "electrical"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Provider" {
		t.Errorf("expected default name, got %q", p.Name)
	}
	if p.Lat != DefaultLat || p.Lng != DefaultLng {
		t.Errorf("expected default location, got %f,%f", p.Lat, p.Lng)
	}
	if p.Online {
		t.Error("expected new provider to be offline")
	}
	if len(p.Skills) != 2 || p.Skills[0] != "plumbing" {
		t.Errorf("unexpected skills %v", p.Skills)
	}
	if n := len(pub.OfType(domain.EventProviderUpdate)); n != 1 {
		t.Errorf("expected 1 provider:update event, got %d", n)
	}
}

func TestRegister_ReplacesExisting(t *testing.T) {
	repo := memory.NewProviderRepository()
	reg := NewProviderRegistry(repo, mockpub.NewMockPublisher(), zap.NewNop())
	ctx := context.Background()

	if _, err := reg.Register(ctx, "020-555", &domain.RegisterProviderRequest{Name: "First"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := reg.SetStatus(ctx, "020-555", domain.ProviderStatusUpdate{Online: boolPtr(true)}); err != nil {
		t.Fatalf("status: %v", err)
	}
	if _, err := reg.Register(ctx, "020-555", &domain.RegisterProviderRequest{Name: "Second"}); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	p, err := reg.Get(ctx, "020-555")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Second" || p.Online {
		t.Errorf("expected fresh offline record, got %+v", p)
	}
}

func TestRegister_Errors(t *testing.T) {
	reg := NewProviderRegistry(memory.NewProviderRepository(), mockpub.NewMockPublisher(), zap.NewNop())

	if _, err := reg.Register(context.Background(), "", &domain.RegisterProviderRequest{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	_, err := reg.Register(context.Background(), "020-555", &domain.RegisterProviderRequest{Lat: f64(120)})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSetStatus_PartialUpdate(t *testing.T) {
	repo := memory.NewProviderRepository()
	pub := mockpub.NewMockPublisher()
	reg := NewProviderRegistry(repo, pub, zap.NewNop())
	ctx := context.Background()

	if _, err := reg.Register(ctx, "020-555", &domain.RegisterProviderRequest{Lat: f64(17.9), Lng: f64(102.6)}); err != nil {
		t.Fatalf("register: %v", err)
	}

	p, err := reg.SetStatus(ctx, "020-555", domain.ProviderStatusUpdate{Online: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Online || p.Lat != 17.9 || p.Lng != 102.6 {
		t.Errorf("expected only online to change, got %+v", p)
	}

	p, err = reg.SetStatus(ctx, "020-555", domain.ProviderStatusUpdate{Lat: f64(math.NaN()), Lng: f64(102.7)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 17.9 {
		t.Errorf("expected invalid lat to be ignored, got %f", p.Lat)
	}
	if p.Lng != 102.7 {
		t.Errorf("expected valid lng to apply, got %f", p.Lng)
	}
	if !p.Online {
		t.Error("expected online to be untouched")
	}

	if n := len(pub.OfType(domain.EventProviderUpdate)); n != 3 {
		t.Errorf("expected 3 provider:update events, got %d", n)
	}
}

func TestSetStatus_NotRegistered(t *testing.T) {
	repo := memory.NewProviderRepository()
	pub := mockpub.NewMockPublisher()
	reg := NewProviderRegistry(repo, pub, zap.NewNop())
	ctx := context.Background()

	_, err := reg.SetStatus(ctx, "020-ghost", domain.ProviderStatusUpdate{Online: boolPtr(true)})
	if !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if _, err := reg.Get(ctx, "020-ghost"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Errorf("expected no record to be created, got %v", err)
	}
	if pub.Len() != 0 {
		t.Errorf("expected no events, got %d", pub.Len())
	}
}
