package domain

import "time"

// DefaultRole is assigned to every identity created through phone verification
const DefaultRole = "user"

// VerificationCode is an outstanding one-time code bound to a phone number
type VerificationCode struct {
	ID          string
	PhoneNumber string
	CodeHash    string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Consumed    bool
	Superseded  bool
}

// IsActive reports whether the code can still be redeemed at the given instant
func (c *VerificationCode) IsActive(now time.Time) bool {
	return !c.Consumed && !c.Superseded && c.ExpiresAt.After(now)
}

// User represents a verified phone identity
type User struct {
	ID          string
	PhoneNumber string
	DisplayName string
	AvatarURL   string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authenticated session held in the session store
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthResult is returned after a successful redemption or session restore
type AuthResult struct {
	User        *User
	Session     *Session
	AccessToken string
	ExpiresIn   int64
}

// SendResult describes a code that was issued and handed to the SMS sender
type SendResult struct {
	PhoneNumber string
	ExpiresAt   time.Time
}
