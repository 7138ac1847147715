package mocks

import (
	"context"
	"sync"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// SentSMS records one delivered code
type SentSMS struct {
	PhoneNumber string
	Code        string
}

// MockSMSSender implements domain.SMSSender interface for testing.
// Every successful send is recorded.
type MockSMSSender struct {
	SendFunc func(ctx context.Context, phoneNumber, code string) error

	mu   sync.Mutex
	sent []SentSMS
}

// NewMockSMSSender creates a new MockSMSSender with default behaviors
func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

// Send delivers a code
func (m *MockSMSSender) Send(ctx context.Context, phoneNumber, code string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, phoneNumber, code); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentSMS{PhoneNumber: phoneNumber, Code: code})
	return nil
}

// Sent returns every recorded message
func (m *MockSMSSender) Sent() []SentSMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentSMS(nil), m.sent...)
}

// LastCode returns the most recent code sent to phoneNumber
func (m *MockSMSSender) LastCode(phoneNumber string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].PhoneNumber == phoneNumber {
			return m.sent[i].Code
		}
	}
	return ""
}

var _ domain.SMSSender = (*MockSMSSender)(nil)
