package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Harsh-BH/dispatch/internal/domain"
)

func TestSessionRepository_OTPLifecycle(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if _, err := repo.GetOTP(ctx, "020111"); !errors.Is(err, domain.ErrOTPMissing) {
		t.Fatalf("expected ErrOTPMissing, got %v", err)
	}

	_ = repo.SaveOTP(ctx, "020111", "123456", 5*time.Minute)
	code, err := repo.GetOTP(ctx, "020111")
	if err != nil || code != "123456" {
		t.Fatalf("expected stored code, got %q / %v", code, err)
	}

	now = now.Add(6 * time.Minute)
	if _, err := repo.GetOTP(ctx, "020111"); !errors.Is(err, domain.ErrOTPExpired) {
		t.Errorf("expected ErrOTPExpired, got %v", err)
	}
}

func TestSessionRepository_TokensAndPrune(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	_ = repo.SaveToken(ctx, "tok_a", "020111", time.Hour)
	_ = repo.SaveToken(ctx, "tok_b", "020222", time.Minute)
	_ = repo.SaveOTP(ctx, "020333", "000000", time.Minute)

	phone, err := repo.ResolveToken(ctx, "tok_a")
	if err != nil || phone != "020111" {
		t.Fatalf("expected 020111, got %q / %v", phone, err)
	}
	if _, err := repo.ResolveToken(ctx, "tok_unknown"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	removed, _ := repo.Prune(ctx, now.Add(10*time.Minute))
	if removed != 2 {
		t.Errorf("expected 2 pruned entries, got %d", removed)
	}
	now = now.Add(10 * time.Minute)
	if _, err := repo.ResolveToken(ctx, "tok_a"); err != nil {
		t.Errorf("long-lived token should survive prune: %v", err)
	}
}

func TestSessionRepository_GetOrCreateUser(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	first, _ := repo.GetOrCreateUser(ctx, "020111", &domain.User{ID: "U-1", Phone: "020111", Name: "Guest"})
	second, _ := repo.GetOrCreateUser(ctx, "020111", &domain.User{ID: "U-2", Phone: "020111", Name: "Guest"})
	if first.ID != "U-1" || second.ID != "U-1" {
		t.Errorf("expected existing user to be returned, got %s and %s", first.ID, second.ID)
	}
}
