package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCodeHasher implements domain.CodeHasher
type BcryptCodeHasher struct {
	cost int
}

// NewCodeHasher creates a bcrypt hasher; out-of-range costs fall back to bcrypt.DefaultCost
func NewCodeHasher(cost int) *BcryptCodeHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptCodeHasher{cost: cost}
}

// Hash implements domain.CodeHasher
func (h *BcryptCodeHasher) Hash(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Matches implements domain.CodeHasher
func (h *BcryptCodeHasher) Matches(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
