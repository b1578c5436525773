package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/geo"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

// Registration defaults for providers that do not send their own.
const (
	defaultProviderName = "Provider"
	DefaultLat          = 17.9757
	DefaultLng          = 102.6331
)

// ProviderRegistry owns provider registration and status updates.
type ProviderRegistry struct {
	repo   repository.ProviderRepository
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewProviderRegistry creates a new ProviderRegistry.
func NewProviderRegistry(repo repository.ProviderRepository, events EventPublisher, logger *zap.Logger) *ProviderRegistry {
	return &ProviderRegistry{
		repo:   repo,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates or replaces the provider for contactKey. The new record is always offline.
func (r *ProviderRegistry) Register(ctx context.Context, contactKey string, req *domain.RegisterProviderRequest) (*domain.Provider, error) {
	if contactKey == "" {
		return nil, domain.ErrUnauthorized
	}

	loc := geo.Point{Lat: DefaultLat, Lng: DefaultLng}
	if req.Lat != nil {
		loc.Lat = *req.Lat
	}
	if req.Lng != nil {
		loc.Lng = *req.Lng
	}
	if !loc.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultProviderName
	}
	skills := make([]string, 0, len(req.Skills))
	for _, s := range req.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	p := &domain.Provider{
		ID:         newID("P-"),
		ContactKey: contactKey,
		Name:       name,
		Skills:     skills,
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		Online:     false,
		CreatedAt:  r.now(),
	}

	if err := r.repo.Upsert(ctx, p); err != nil {
		r.logger.Error("Failed to store provider", zap.Error(err), zap.String("contact_key", contactKey))
		return nil, fmt.Errorf("register provider: %w", err)
	}

	r.logger.Info("Provider registered",
		zap.String("provider_id", p.ID),
		zap.String("contact_key", contactKey),
		zap.String("name", p.Name),
	)

	r.events.Publish(domain.EventProviderUpdate, p)
	return p, nil
}

// SetStatus applies a partial update. Coordinates that are missing, non-finite
// or out of range are dropped so they never clear the stored values.
func (r *ProviderRegistry) SetStatus(ctx context.Context, contactKey string, upd domain.ProviderStatusUpdate) (*domain.Provider, error) {
	if contactKey == "" {
		return nil, domain.ErrUnauthorized
	}

	if upd.Lat != nil && !(geo.IsFinite(*upd.Lat) && *upd.Lat >= -90 && *upd.Lat <= 90) {
		upd.Lat = nil
	}
	if upd.Lng != nil && !(geo.IsFinite(*upd.Lng) && *upd.Lng >= -180 && *upd.Lng <= 180) {
		upd.Lng = nil
	}

	p, err := r.repo.Update(ctx, contactKey, upd)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Provider status updated",
		zap.String("contact_key", contactKey),
		zap.Bool("online", p.Online),
	)

	r.events.Publish(domain.EventProviderUpdate, p)
	return p, nil
}

// Get returns the provider for contactKey or domain.ErrNotRegistered.
func (r *ProviderRegistry) Get(ctx context.Context, contactKey string) (*domain.Provider, error) {
	if contactKey == "" {
		return nil, domain.ErrUnauthorized
	}
	return r.repo.Get(ctx, contactKey)
}
