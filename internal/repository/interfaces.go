package repository

import (
	"context"
	"time"

	"github.com/Harsh-BH/dispatch/internal/domain"
)

// ProviderRepository stores providers keyed by contact key.
// Implementations must be safe for concurrent use and must hand out copies.
type ProviderRepository interface {
	// Upsert creates or fully replaces the provider stored under p.ContactKey.
	Upsert(ctx context.Context, p *domain.Provider) error

	// Update applies a partial update and returns the resulting record.
	// Returns domain.ErrNotRegistered when no provider exists for the key.
	Update(ctx context.Context, contactKey string, upd domain.ProviderStatusUpdate) (*domain.Provider, error)

	// Get returns the provider or domain.ErrNotRegistered.
	Get(ctx context.Context, contactKey string) (*domain.Provider, error)

	// CountOnline returns the number of providers with the online flag set.
	CountOnline(ctx context.Context) (int, error)
}

// JobRepository stores jobs newest-first.
// Implementations must be safe for concurrent use and must hand out copies.
type JobRepository interface {
	// Create inserts a new job in front of all existing ones.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job or domain.ErrJobNotFound.
	GetByID(ctx context.Context, id string) (*domain.Job, error)

	// List returns every job, newest first.
	List(ctx context.Context) ([]*domain.Job, error)

	// ListAssignedTo returns jobs whose assignee is contactKey, newest first.
	ListAssignedTo(ctx context.Context, contactKey string) ([]*domain.Job, error)

	// Assign atomically moves an unassigned Requested job to Accepted.
	// Exactly one of any number of concurrent callers succeeds; the rest get
	// domain.ErrAlreadyAssigned. Unknown ids yield domain.ErrJobNotFound.
	Assign(ctx context.Context, id, contactKey string, at time.Time) (*domain.Job, error)
}

// OrderRepository stores storefront orders newest-first.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByPhone(ctx context.Context, phone string) ([]*domain.Order, error)

	// MarkPaid sets the status and payment time, returning the updated order.
	MarkPaid(ctx context.Context, id, status string, at time.Time) (*domain.Order, error)
}

// SessionRepository holds OTP codes, bearer tokens and users.
type SessionRepository interface {
	// SaveOTP stores code for phone, replacing any previous code.
	SaveOTP(ctx context.Context, phone, code string, ttl time.Duration) error

	// GetOTP returns the pending code or domain.ErrOTPMissing / domain.ErrOTPExpired.
	GetOTP(ctx context.Context, phone string) (string, error)

	DeleteOTP(ctx context.Context, phone string) error

	// SaveToken binds token to phone for ttl.
	SaveToken(ctx context.Context, token, phone string, ttl time.Duration) error

	// ResolveToken returns the phone bound to token or domain.ErrUnauthorized.
	ResolveToken(ctx context.Context, token string) (string, error)

	// GetOrCreateUser returns the user for phone, storing newUser if none exists.
	GetOrCreateUser(ctx context.Context, phone string, newUser *domain.User) (*domain.User, error)

	GetUser(ctx context.Context, phone string) (*domain.User, error)

	// Prune drops expired entries and reports how many were removed.
	// Backends with native expiry may return zero.
	Prune(ctx context.Context, now time.Time) (int, error)
}
