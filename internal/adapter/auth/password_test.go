package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, h.Compare(hash, "hunter2"))
	assert.ErrorIs(t, h.Compare(hash, "hunter3"), port.ErrIncorrectPassword)

	err = h.Compare("not-a-bcrypt-hash", "hunter2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrIncorrectPassword)
}

func TestBcryptHasherCostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
