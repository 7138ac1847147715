package mocks

import (
	"context"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// MockLimiter implements domain.Limiter interface for testing
type MockLimiter struct {
	AllowFunc   func(ctx context.Context, subject string) error
	ReleaseFunc func(ctx context.Context, subject string) error
	ResetFunc   func(ctx context.Context, subject string) error

	ReleaseCalls []string
	ResetCalls   []string
}

// NewMockLimiter creates a limiter that allows everything
func NewMockLimiter() *MockLimiter {
	return &MockLimiter{}
}

// Allow checks the throttle
func (m *MockLimiter) Allow(ctx context.Context, subject string) error {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, subject)
	}
	return nil
}

// Release gives back the cooldown
func (m *MockLimiter) Release(ctx context.Context, subject string) error {
	m.ReleaseCalls = append(m.ReleaseCalls, subject)
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, subject)
	}
	return nil
}

// Reset clears the throttle
func (m *MockLimiter) Reset(ctx context.Context, subject string) error {
	m.ResetCalls = append(m.ResetCalls, subject)
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, subject)
	}
	return nil
}

var _ domain.Limiter = (*MockLimiter)(nil)
