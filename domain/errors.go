package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Send errors
var (
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrDeliveryFailed     = errors.New("verification code delivery failed")
	ErrRateLimited        = errors.New("too many requests")
)

// Redeem errors
var (
	ErrInvalidOrExpiredCode   = errors.New("invalid or expired verification code")
	ErrIdentityIssuanceFailed = errors.New("identity issuance failed")
)

// Storage errors
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrCodeNotFound       = errors.New("verification code not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// RateLimitError carries how long the caller should wait before retrying
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %d seconds", ErrRateLimited, int64(e.RetryAfter.Seconds()))
}

// Unwrap lets errors.Is match ErrRateLimited
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// StorageError wraps an underlying storage failure as ErrStorageUnavailable
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// IsTransient reports whether the failure is safe to retry
func IsTransient(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrDeliveryFailed) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}
