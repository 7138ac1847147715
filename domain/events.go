package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	CodeRequestedEvent      AuditEventType = "VERIFICATION_CODE_REQUESTED"
	CodeRequestFailureEvent AuditEventType = "VERIFICATION_CODE_REQUEST_FAILED"
	CodeRedeemedEvent       AuditEventType = "VERIFICATION_CODE_REDEEMED"
	CodeRedeemFailureEvent  AuditEventType = "VERIFICATION_CODE_REDEEM_FAILED"
	SessionIssuedEvent      AuditEventType = "SESSION_ISSUED"
	UserCreatedEvent        AuditEventType = "USER_CREATED"
	SessionDestroyedEvent   AuditEventType = "SESSION_DESTROYED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType   AuditEventType         `json:"event_type"`
	UserID      string                 `json:"user_id,omitempty"`
	PhoneNumber string                 `json:"phone_number,omitempty"`
	SessionID   string                 `json:"session_id,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	Success     bool                   `json:"success"`
}

// AuditLogger records security relevant events
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithPhone sets the phone field
func (e *AuditEvent) WithPhone(phone string) *AuditEvent {
	e.PhoneNumber = phone
	return e
}

// WithUser sets the user field
func (e *AuditEvent) WithUser(userID string) *AuditEvent {
	e.UserID = userID
	return e
}

// WithSession sets the session field
func (e *AuditEvent) WithSession(sessionID string) *AuditEvent {
	e.SessionID = sessionID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
