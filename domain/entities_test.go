package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerificationCode_IsActive(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		code        *VerificationCode
		expectValid bool
	}{
		{
			name:        "fresh code",
			code:        &VerificationCode{ExpiresAt: now.Add(10 * time.Minute)},
			expectValid: true,
		},
		{
			name:        "expired code",
			code:        &VerificationCode{ExpiresAt: now.Add(-time.Second)},
			expectValid: false,
		},
		{
			name:        "expiry instant is exclusive",
			code:        &VerificationCode{ExpiresAt: now},
			expectValid: false,
		},
		{
			name:        "consumed code",
			code:        &VerificationCode{ExpiresAt: now.Add(time.Minute), Consumed: true},
			expectValid: false,
		},
		{
			name:        "superseded code",
			code:        &VerificationCode{ExpiresAt: now.Add(time.Minute), Superseded: true},
			expectValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.IsActive(now); got != tt.expectValid {
				t.Errorf("IsActive() = %t, want %t", got, tt.expectValid)
			}
		})
	}
}

func TestAuditEvent_Builders(t *testing.T) {
	event := NewAuditEvent(CodeRedeemedEvent).
		WithPhone("+15551234567").
		WithUser("user-1").
		WithSession("sess-1").
		WithMetadata("code_id", "code-1")

	if event.EventType != CodeRedeemedEvent {
		t.Errorf("event type = %s", event.EventType)
	}
	if !event.Success {
		t.Error("new events succeed until an error is attached")
	}
	if event.PhoneNumber != "+15551234567" || event.UserID != "user-1" || event.SessionID != "sess-1" {
		t.Errorf("unexpected fields: %+v", event)
	}
	if event.Metadata["code_id"] != "code-1" {
		t.Errorf("metadata = %v", event.Metadata)
	}
	if event.Timestamp.Location() != time.UTC {
		t.Error("timestamp should be UTC")
	}

	failed := NewAuditEvent(CodeRedeemFailureEvent).WithError(ErrInvalidOrExpiredCode)
	if failed.Success {
		t.Error("WithError should mark the event as failed")
	}
	if failed.ErrorMsg != ErrInvalidOrExpiredCode.Error() {
		t.Errorf("error message = %q", failed.ErrorMsg)
	}

	// A nil error still marks the event as failed
	if NewAuditEvent(CodeRequestFailureEvent).WithError(nil).Success {
		t.Error("WithError(nil) should mark the event as failed")
	}
}

func TestTransientClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"storage", StorageError("put", errors.New("conn reset")), true},
		{"delivery", ErrDeliveryFailed, true},
		{"rate limited", &RateLimitError{RetryAfter: time.Minute}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"invalid code", ErrInvalidOrExpiredCode, false},
		{"invalid phone", ErrInvalidPhoneNumber, false},
		{"issuance", ErrIdentityIssuanceFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient(%v) = %t, want %t", tt.err, got, tt.transient)
			}
		})
	}
}
