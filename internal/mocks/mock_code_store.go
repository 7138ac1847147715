package mocks

import (
	"context"
	"time"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// MockCodeStore implements domain.CodeStore interface for testing
type MockCodeStore struct {
	PutFunc                  func(ctx context.Context, code *domain.VerificationCode) error
	FindActiveFunc           func(ctx context.Context, phoneNumber, code string) (*domain.VerificationCode, error)
	MarkConsumedFunc         func(ctx context.Context, id string) (bool, error)
	SupersedeOutstandingFunc func(ctx context.Context, keep *domain.VerificationCode) (int64, error)
	PurgeExpiredFunc         func(ctx context.Context, before time.Time) (int64, error)
}

// NewMockCodeStore creates a new MockCodeStore with default behaviors
func NewMockCodeStore() *MockCodeStore {
	return &MockCodeStore{}
}

// Put stores a verification code
func (m *MockCodeStore) Put(ctx context.Context, code *domain.VerificationCode) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, code)
	}
	return nil
}

// FindActive looks up a redeemable code
func (m *MockCodeStore) FindActive(ctx context.Context, phoneNumber, code string) (*domain.VerificationCode, error) {
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx, phoneNumber, code)
	}
	// Default behavior: no matching code
	return nil, domain.ErrCodeNotFound
}

// MarkConsumed consumes a code
func (m *MockCodeStore) MarkConsumed(ctx context.Context, id string) (bool, error) {
	if m.MarkConsumedFunc != nil {
		return m.MarkConsumedFunc(ctx, id)
	}
	// Default behavior: caller wins
	return true, nil
}

// SupersedeOutstanding invalidates older codes
func (m *MockCodeStore) SupersedeOutstanding(ctx context.Context, keep *domain.VerificationCode) (int64, error) {
	if m.SupersedeOutstandingFunc != nil {
		return m.SupersedeOutstandingFunc(ctx, keep)
	}
	return 0, nil
}

// PurgeExpired deletes dead codes
func (m *MockCodeStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.PurgeExpiredFunc != nil {
		return m.PurgeExpiredFunc(ctx, before)
	}
	return 0, nil
}

var _ domain.CodeStore = (*MockCodeStore)(nil)
