package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

var _ repository.SessionRepository = (*redisSessions)(nil)

const (
	otpKeyPrefix   = "dispatch:otp:"
	tokenKeyPrefix = "dispatch:token:"
	userKeyPrefix  = "dispatch:user:"
)

type redisSessions struct {
	client *goredis.Client
}

// NewRedisSessionRepository creates a Redis-backed session store. OTPs and tokens
// rely on key TTLs for expiry, so an expired OTP reads as missing.
func NewRedisSessionRepository(client *goredis.Client) repository.SessionRepository {
	return &redisSessions{client: client}
}

func (r *redisSessions) SaveOTP(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := r.client.Set(ctx, otpKeyPrefix+phone, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis: save otp: %w", err)
	}
	return nil
}

func (r *redisSessions) GetOTP(ctx context.Context, phone string) (string, error) {
	code, err := r.client.Get(ctx, otpKeyPrefix+phone).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrOTPMissing
	}
	if err != nil {
		return "", fmt.Errorf("redis: get otp: %w", err)
	}
	return code, nil
}

func (r *redisSessions) DeleteOTP(ctx context.Context, phone string) error {
	return r.client.Del(ctx, otpKeyPrefix+phone).Err()
}

func (r *redisSessions) SaveToken(ctx context.Context, token, phone string, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKeyPrefix+token, phone, ttl).Err(); err != nil {
		return fmt.Errorf("redis: save token: %w", err)
	}
	return nil
}

func (r *redisSessions) ResolveToken(ctx context.Context, token string) (string, error) {
	phone, err := r.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("redis: resolve token: %w", err)
	}
	return phone, nil
}

// GetOrCreateUser uses SETNX so concurrent first logins agree on one user record.
func (r *redisSessions) GetOrCreateUser(ctx context.Context, phone string, newUser *domain.User) (*domain.User, error) {
	body, err := json.Marshal(newUser)
	if err != nil {
		return nil, fmt.Errorf("redis: marshal user: %w", err)
	}
	if err := r.client.SetNX(ctx, userKeyPrefix+phone, body, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis: create user: %w", err)
	}
	return r.GetUser(ctx, phone)
}

func (r *redisSessions) GetUser(ctx context.Context, phone string) (*domain.User, error) {
	body, err := r.client.Get(ctx, userKeyPrefix+phone).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get user: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("redis: unmarshal user: %w", err)
	}
	return &u, nil
}

// Prune is a no-op: Redis expires OTP and token keys itself.
func (r *redisSessions) Prune(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
