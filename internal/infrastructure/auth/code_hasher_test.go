package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptCodeHasher(t *testing.T) {
	hasher := NewCodeHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	assert.True(t, hasher.Matches(hash, "123456"))
	assert.False(t, hasher.Matches(hash, "654321"))
	assert.False(t, hasher.Matches("not-a-hash", "123456"))

	again, err := hasher.Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewCodeHasher_CostBounds(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewCodeHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewCodeHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 6, NewCodeHasher(6).cost)
}
