package utils

import (
	"budget_ledger/internal/domain" // Validation errors

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

// Hasher turns passwords into salted bcrypt digests and verifies them
type Hasher struct {
	cost int // Bcrypt work factor
}

// NewHasher creates a Hasher, falling back to the default cost when out of range
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of plaintext
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", domain.NewValidationError("password", "must be at most %d bytes", maxPasswordBytes)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest; malformed digests never match
func (h *Hasher) Verify(digest, plaintext string) bool {
	if len(plaintext) > maxPasswordBytes {
		return false // bcrypt would only compare the first 72 bytes
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
