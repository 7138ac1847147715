package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	GenerateFunc func(session *domain.Session) (string, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
	TTLValue     time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{TTLValue: time.Hour}
}

// Generate signs a token for the session
func (m *MockTokenService) Generate(session *domain.Session) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(session)
	}
	// Default behavior: readable token "token:<user>:<session>"
	return fmt.Sprintf("token:%s:%s", session.UserID, session.ID), nil
}

// Validate parses tokens produced by the default Generate
func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    parts[1],
		SessionID: parts[2],
		Role:      domain.DefaultRole,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.TTL()).Unix(),
	}, nil
}

// TTL returns the configured token lifetime
func (m *MockTokenService) TTL() time.Duration {
	return m.TTLValue
}

var _ domain.TokenService = (*MockTokenService)(nil)
