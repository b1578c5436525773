package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

const minPhoneLength = 6

// AuthService issues one-time codes and bearer tokens. The phone number is the
// contact key every other service keys identity on.
type AuthService struct {
	sessions repository.SessionRepository
	otpTTL   time.Duration
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(sessions repository.SessionRepository, otpTTL, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		sessions: sessions,
		otpTTL:   otpTTL,
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestOTP generates a six digit code for phone. The code is returned to the
// caller since there is no SMS gateway.
func (s *AuthService) RequestOTP(ctx context.Context, phone string) (*domain.OTPResponse, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < minPhoneLength {
		return nil, fmt.Errorf("%w: invalid phone", domain.ErrInvalidInput)
	}

	code, err := sixDigitCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	if err := s.sessions.SaveOTP(ctx, phone, code, s.otpTTL); err != nil {
		return nil, fmt.Errorf("save otp: %w", err)
	}

	s.logger.Info("OTP issued", zap.String("phone", phone), zap.Duration("ttl", s.otpTTL))

	return &domain.OTPResponse{
		OK:        true,
		DemoCode:  code,
		ExpiresIn: int(s.otpTTL / time.Second),
	}, nil
}

// VerifyOTP checks code, creates the user on first login and issues a token.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*domain.Session, error) {
	phone = strings.TrimSpace(phone)

	want, err := s.sessions.GetOTP(ctx, phone)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) != want {
		return nil, domain.ErrOTPMismatch
	}

	user, err := s.sessions.GetOrCreateUser(ctx, phone, &domain.User{
		ID:        newID("U-"),
		Phone:     phone,
		Name:      defaultGuestName,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	token := "tok_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.sessions.SaveToken(ctx, token, phone, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	if err := s.sessions.DeleteOTP(ctx, phone); err != nil {
		s.logger.Warn("Failed to delete used OTP", zap.Error(err), zap.String("phone", phone))
	}

	s.logger.Info("Session issued", zap.String("user_id", user.ID))
	return &domain.Session{Token: token, User: user}, nil
}

// Resolve maps a bearer token to its contact key.
func (s *AuthService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	return s.sessions.ResolveToken(ctx, token)
}

// Me returns the user bound to phone.
func (s *AuthService) Me(ctx context.Context, phone string) (*domain.User, error) {
	if phone == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.sessions.GetUser(ctx, phone)
	if errors.Is(err, domain.ErrUnauthorized) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// Prune drops expired codes and tokens.
func (s *AuthService) Prune(ctx context.Context) (int, error) {
	return s.sessions.Prune(ctx, s.now())
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
