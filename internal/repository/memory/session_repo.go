package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

var _ repository.SessionRepository = (*SessionRepository)(nil)

type expiring struct {
	value     string
	expiresAt time.Time
}

// SessionRepository keeps OTPs, tokens and users in maps. Expired entries are
// rejected on read and dropped by Prune.
type SessionRepository struct {
	mu     sync.Mutex
	otps   map[string]expiring
	tokens map[string]expiring
	users  map[string]*domain.User

	now func() time.Time
}

// NewSessionRepository creates an empty in-memory session store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		otps:   make(map[string]expiring),
		tokens: make(map[string]expiring),
		users:  make(map[string]*domain.User),
		now:    time.Now,
	}
}

func (r *SessionRepository) SaveOTP(ctx context.Context, phone, code string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.otps[phone] = expiring{value: code, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *SessionRepository) GetOTP(ctx context.Context, phone string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.otps[phone]
	if !ok {
		return "", domain.ErrOTPMissing
	}
	if r.now().After(rec.expiresAt) {
		return "", domain.ErrOTPExpired
	}
	return rec.value, nil
}

func (r *SessionRepository) DeleteOTP(ctx context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, phone)
	return nil
}

func (r *SessionRepository) SaveToken(ctx context.Context, token, phone string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = expiring{value: phone, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *SessionRepository) ResolveToken(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tokens[token]
	if !ok || r.now().After(rec.expiresAt) {
		return "", domain.ErrUnauthorized
	}
	return rec.value, nil
}

func (r *SessionRepository) GetOrCreateUser(ctx context.Context, phone string, newUser *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[phone]; ok {
		c := *u
		return &c, nil
	}
	c := *newUser
	r.users[phone] = &c
	out := c
	return &out, nil
}

func (r *SessionRepository) GetUser(ctx context.Context, phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[phone]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	c := *u
	return &c, nil
}

func (r *SessionRepository) Prune(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for k, v := range r.otps {
		if now.After(v.expiresAt) {
			delete(r.otps, k)
			removed++
		}
	}
	for k, v := range r.tokens {
		if now.After(v.expiresAt) {
			delete(r.tokens, k)
			removed++
		}
	}
	return removed, nil
}
