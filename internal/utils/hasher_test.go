package utils

import (
	"strings"
	"testing"

	"budget_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, p := range []string{"secret", "", "pässwörd", strings.Repeat("x", 72)} {
		digest, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, digest, "digest must not be the plaintext")
		assert.True(t, h.Verify(digest, p), "verify(hash(p), p) for %q", p)
		assert.False(t, h.Verify(digest, p+"!"), "different plaintext must not verify")
	}
}

func TestVerifyRejectsSuffixBeyondLimit(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	password := strings.Repeat("x", 72)

	digest, err := h.Hash(password)
	require.NoError(t, err)
	assert.True(t, h.Verify(digest, password))
	for _, extra := range []string{"!", "anything-else", strings.Repeat("x", 10)} {
		assert.False(t, h.Verify(digest, password+extra), "suffix %q must not verify", extra)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashRejectsLongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 73))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("not-a-bcrypt-digest", "secret"))
	assert.False(t, h.Verify("", ""))
}

func TestNewHasherCostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}
