package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/geo"
	"github.com/Harsh-BH/dispatch/internal/metrics"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

const (
	// DefaultJobRadiusKm applies to job queries that carry a point but no radius.
	DefaultJobRadiusKm = 10.0

	demoJitterDegrees = 0.02
)

// DispatchEngine orchestrates job creation, geospatial listing and claiming.
// It is the only writer of job assignment state.
type DispatchEngine struct {
	jobs      repository.JobRepository
	providers repository.ProviderRepository
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
	jitter    func() float64
}

// NewDispatchEngine creates a new DispatchEngine.
func NewDispatchEngine(
	jobs repository.JobRepository,
	providers repository.ProviderRepository,
	events EventPublisher,
	logger *zap.Logger,
) *DispatchEngine {
	return &DispatchEngine{
		jobs:      jobs,
		providers: providers,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		jitter:    func() float64 { return (rand.Float64() - 0.5) * demoJitterDegrees },
	}
}

// CreateJob validates req, stores a new Requested job and broadcasts it.
func (e *DispatchEngine) CreateJob(ctx context.Context, origin string, req *domain.CreateJobRequest) (*domain.Job, error) {
	if origin == "" {
		return nil, domain.ErrUnauthorized
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if req.Lat == nil || req.Lng == nil {
		return nil, fmt.Errorf("%w: lat and lng are required", domain.ErrInvalidInput)
	}
	loc := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	if !loc.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	when := req.When
	if when == "" {
		when = domain.WhenASAP
	}
	if !domain.ValidWhen(when) {
		return nil, fmt.Errorf("%w: unrecognised timing %q", domain.ErrInvalidInput, when)
	}

	job := &domain.Job{
		ID:          newID("J-"),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		When:        when,
		Price:       req.Price,
		Status:      domain.JobRequested,
		RequestedBy: origin,
		CreatedAt:   e.now(),
	}

	if err := e.jobs.Create(ctx, job); err != nil {
		e.logger.Error("Failed to create job", zap.Error(err), zap.String("job_id", job.ID))
		return nil, fmt.Errorf("create job: %w", err)
	}
	metrics.JobsCreated.Inc()

	e.logger.Info("Job created",
		zap.String("job_id", job.ID),
		zap.String("requested_by", origin),
		zap.Float64("lat", job.Lat),
		zap.Float64("lng", job.Lng),
	)

	e.events.Publish(domain.EventJobUpdate, job)
	return job, nil
}

// CreateDemoJob creates the canned demo job near the caller's provider
// location, or near the default point when the caller is not a provider.
func (e *DispatchEngine) CreateDemoJob(ctx context.Context, origin string) (*domain.Job, error) {
	if origin == "" {
		return nil, domain.ErrUnauthorized
	}

	base := geo.Point{Lat: DefaultLat, Lng: DefaultLng}
	p, err := e.providers.Get(ctx, origin)
	switch {
	case err == nil:
		base = p.Location()
	case errors.Is(err, domain.ErrNotRegistered):
	default:
		return nil, fmt.Errorf("lookup provider: %w", err)
	}

	lat := base.Lat + e.jitter()
	lng := base.Lng + e.jitter()
	return e.CreateJob(ctx, origin, &domain.CreateJobRequest{
		Title:       "Light bulb installation",
		Description: "Replace 2 bulbs in living room",
		Lat:         &lat,
		Lng:         &lng,
		When:        domain.WhenASAP,
		Price:       50000,
	})
}

// ListAll returns every job, newest first.
func (e *DispatchEngine) ListAll(ctx context.Context) ([]*domain.Job, error) {
	return e.jobs.List(ctx)
}

// ListAvailable returns claimable jobs. With a query point the result is
// limited to the radius and ordered by ascending distance.
func (e *DispatchEngine) ListAvailable(ctx context.Context, near *domain.NearQuery) ([]domain.JobView, error) {
	if near != nil {
		if err := validateNear(*near); err != nil {
			return nil, err
		}
	}

	all, err := e.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	available := make([]*domain.Job, 0, len(all))
	for _, j := range all {
		if j.IsAvailable() {
			available = append(available, j)
		}
	}

	if near == nil {
		views := make([]domain.JobView, len(available))
		for i, j := range available {
			views[i] = domain.JobView{Job: j}
		}
		return views, nil
	}
	return rankByDistance(available, *near), nil
}

// ListAssignedTo returns the jobs claimed by contactKey.
func (e *DispatchEngine) ListAssignedTo(ctx context.Context, contactKey string) ([]*domain.Job, error) {
	if contactKey == "" {
		return nil, domain.ErrUnauthorized
	}
	return e.jobs.ListAssignedTo(ctx, contactKey)
}

// ListNear returns jobs in any status within the query radius, nearest first.
func (e *DispatchEngine) ListNear(ctx context.Context, near domain.NearQuery) ([]domain.JobView, error) {
	if err := validateNear(near); err != nil {
		return nil, err
	}
	all, err := e.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return rankByDistance(all, near), nil
}

// Claim assigns jobID to contactKey. Exactly one concurrent caller wins; a
// repeat claim by the winner is a conflict like any other.
func (e *DispatchEngine) Claim(ctx context.Context, jobID, contactKey string) (*domain.Job, error) {
	if contactKey == "" {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrInvalidInput)
	}

	job, err := e.jobs.Assign(ctx, jobID, contactKey, e.now())
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyAssigned):
		metrics.ClaimsTotal.WithLabelValues("conflict").Inc()
		e.logger.Info("Claim lost", zap.String("job_id", jobID), zap.String("contact_key", contactKey))
		return nil, err
	case errors.Is(err, domain.ErrJobNotFound):
		metrics.ClaimsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	default:
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		e.logger.Error("Claim failed", zap.Error(err), zap.String("job_id", jobID))
		return nil, fmt.Errorf("claim job: %w", err)
	}

	metrics.ClaimsTotal.WithLabelValues("won").Inc()
	e.logger.Info("Job claimed",
		zap.String("job_id", job.ID),
		zap.String("contact_key", contactKey),
	)

	e.events.Publish(domain.EventJobUpdate, job)
	return job, nil
}

func validateNear(q domain.NearQuery) error {
	if !q.Point.Valid() {
		return fmt.Errorf("%w: query point out of range", domain.ErrInvalidInput)
	}
	if !geo.IsFinite(q.RadiusKm) || q.RadiusKm < 0 {
		return fmt.Errorf("%w: radius must be a non-negative number", domain.ErrInvalidInput)
	}
	return nil
}

// rankByDistance annotates, filters and stable-sorts jobs so equal distances keep storage order.
func rankByDistance(jobs []*domain.Job, q domain.NearQuery) []domain.JobView {
	views := make([]domain.JobView, 0, len(jobs))
	for _, j := range jobs {
		d := geo.Distance(q.Point, j.Location())
		if !geo.IsFinite(d) || d > q.RadiusKm {
			continue
		}
		km := d
		eta := geo.ETAMinutes(d)
		views = append(views, domain.JobView{Job: j, Km: &km, EtaMins: &eta})
	}

	sort.SliceStable(views, func(a, b int) bool {
		return *views[a].Km < *views[b].Km
	})
	return views
}
