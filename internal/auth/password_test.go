package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cost 4 keeps bcrypt fast in tests.
func testHasher() *PasswordHasher {
	return NewPasswordHasher(4)
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("longenough1")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, h.Verify("longenough1", hash))
	assert.False(t, h.Verify("wrongpassword", hash))
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("longenough1")
	require.NoError(t, err)
	second, err := h.Hash("longenough1")
	require.NoError(t, err)

	// Each hash carries its own salt.
	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("longenough1", first))
	assert.True(t, h.Verify("longenough1", second))
}

func TestVerify_MalformedHash(t *testing.T) {
	h := testHasher()

	assert.False(t, h.Verify("longenough1", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("longenough1", ""))
}

func TestNewPasswordHasher_OutOfRangeCostFallsBack(t *testing.T) {
	for _, cost := range []int{-1, 0, 3, 32} {
		h := NewPasswordHasher(cost)
		assert.Equal(t, DefaultBcryptCost, h.cost, "cost %d", cost)
	}
}
