package domain

import (
	"context"
	"time"
)

// CodeStore defines durable storage for verification codes
type CodeStore interface {
	Put(ctx context.Context, code *VerificationCode) error
	FindActive(ctx context.Context, phoneNumber, code string) (*VerificationCode, error)
	MarkConsumed(ctx context.Context, id string) (bool, error)
	SupersedeOutstanding(ctx context.Context, keep *VerificationCode) (int64, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phoneNumber string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// VerificationService defines the two-phase OTP protocol
type VerificationService interface {
	SendCode(ctx context.Context, phoneNumber string) (*SendResult, error)
	Redeem(ctx context.Context, phoneNumber, code string) (*AuthResult, error)
}

// SessionIssuer maps verified phone numbers to identities and manages sessions
type SessionIssuer interface {
	IssueSession(ctx context.Context, phoneNumber string) (*AuthResult, error)
	GetCurrentSession(ctx context.Context, accessToken string) (*AuthResult, error)
	DestroySession(ctx context.Context, sessionID string) error
}

// SMSSender delivers a verification code out of band
type SMSSender interface {
	Send(ctx context.Context, phoneNumber, code string) error
}

// CodeHasher protects verification codes at rest
type CodeHasher interface {
	Hash(code string) (string, error)
	Matches(hash, code string) bool
}

// TokenService signs and validates session bearer tokens
type TokenService interface {
	Generate(session *Session) (string, error)
	Validate(token string) (*TokenClaims, error)
	TTL() time.Duration
}

// Limiter throttles operations per subject
type Limiter interface {
	Allow(ctx context.Context, subject string) error
	// Release gives back a cooldown taken by Allow without clearing the window count
	Release(ctx context.Context, subject string) error
	Reset(ctx context.Context, subject string) error
}

// PhoneNormalizer canonicalizes raw phone input to E.164
type PhoneNormalizer interface {
	Canonicalize(raw string) (string, error)
}

// TokenClaims represents the validated content of a session token
type TokenClaims struct {
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	SessionID   string `json:"session_id"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
}
