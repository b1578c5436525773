package domain

import "errors"

var (
	// ErrUnauthorized is returned when an operation needs a resolved caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrJobNotFound is returned when a job cannot be found by ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrNotRegistered is returned when a provider operation targets an unknown contact key.
	ErrNotRegistered = errors.New("not registered")

	// ErrAlreadyAssigned is returned to every claim that loses the race for a job.
	ErrAlreadyAssigned = errors.New("already assigned")

	// ErrInvalidInput wraps malformed coordinates and missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOrderNotFound is returned when an order cannot be found by ID.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOTPMissing is returned when no code was requested for the phone.
	ErrOTPMissing = errors.New("no otp")

	// ErrOTPExpired is returned when the requested code is past its TTL.
	ErrOTPExpired = errors.New("otp expired")

	// ErrOTPMismatch is returned when the submitted code does not match.
	ErrOTPMismatch = errors.New("wrong code")
)
