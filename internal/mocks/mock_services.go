package mocks

import (
	"context"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// MockVerificationService implements domain.VerificationService interface for testing
type MockVerificationService struct {
	SendCodeFunc func(ctx context.Context, phoneNumber string) (*domain.SendResult, error)
	RedeemFunc   func(ctx context.Context, phoneNumber, code string) (*domain.AuthResult, error)
}

// NewMockVerificationService creates a new MockVerificationService
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

// SendCode issues a code
func (m *MockVerificationService) SendCode(ctx context.Context, phoneNumber string) (*domain.SendResult, error) {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(ctx, phoneNumber)
	}
	return &domain.SendResult{PhoneNumber: phoneNumber}, nil
}

// Redeem exchanges a code for a session
func (m *MockVerificationService) Redeem(ctx context.Context, phoneNumber, code string) (*domain.AuthResult, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, phoneNumber, code)
	}
	return nil, domain.ErrInvalidOrExpiredCode
}

// MockSessionIssuer implements domain.SessionIssuer interface for testing
type MockSessionIssuer struct {
	IssueSessionFunc      func(ctx context.Context, phoneNumber string) (*domain.AuthResult, error)
	GetCurrentSessionFunc func(ctx context.Context, accessToken string) (*domain.AuthResult, error)
	DestroySessionFunc    func(ctx context.Context, sessionID string) error
}

// NewMockSessionIssuer creates a new MockSessionIssuer
func NewMockSessionIssuer() *MockSessionIssuer {
	return &MockSessionIssuer{}
}

// IssueSession creates a session for a verified phone number
func (m *MockSessionIssuer) IssueSession(ctx context.Context, phoneNumber string) (*domain.AuthResult, error) {
	if m.IssueSessionFunc != nil {
		return m.IssueSessionFunc(ctx, phoneNumber)
	}
	return &domain.AuthResult{
		User:        &domain.User{ID: "user-1", PhoneNumber: phoneNumber, Role: domain.DefaultRole},
		Session:     &domain.Session{ID: "sess-1", UserID: "user-1", PhoneNumber: phoneNumber, Role: domain.DefaultRole},
		AccessToken: "token:user-1:sess-1",
		ExpiresIn:   3600,
	}, nil
}

// GetCurrentSession restores a session from a token
func (m *MockSessionIssuer) GetCurrentSession(ctx context.Context, accessToken string) (*domain.AuthResult, error) {
	if m.GetCurrentSessionFunc != nil {
		return m.GetCurrentSessionFunc(ctx, accessToken)
	}
	return nil, domain.ErrTokenInvalid
}

// DestroySession logs a session out
func (m *MockSessionIssuer) DestroySession(ctx context.Context, sessionID string) error {
	if m.DestroySessionFunc != nil {
		return m.DestroySessionFunc(ctx, sessionID)
	}
	return nil
}

var (
	_ domain.VerificationService = (*MockVerificationService)(nil)
	_ domain.SessionIssuer       = (*MockSessionIssuer)(nil)
)
