package utils

import (
	"crypto/sha256" // Password hash fingerprint
	"encoding/hex"  // Fingerprint encoding
	"time"          // Token expiry

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// DefaultResetTTL is how long a password reset link stays valid
const DefaultResetTTL = 1800 * time.Second

// resetPurpose keeps session tokens from being accepted as reset tokens
const resetPurpose = "password_reset"

// ResetPayload is the data carried by a reset token
type ResetPayload struct {
	UserID      uint   // User asking for the reset
	Fingerprint string // Fingerprint of the password hash at issue time
}

// resetClaims is the signed form of ResetPayload
type resetClaims struct {
	UserID      uint   `json:"user_id"` // Reset target
	Purpose     string `json:"purpose"` // Always resetPurpose
	Fingerprint string `json:"fp"`      // Password hash fingerprint
	jwt.RegisteredClaims
}

// TokenService issues and validates expiring, tamper-proof reset tokens
type TokenService struct {
	secret []byte           // HMAC key, loaded once at startup
	now    func() time.Time // Clock, replaceable in tests
}

// NewTokenService creates a TokenService; a nil clock means time.Now
func NewTokenService(secret string, clock func() time.Time) *TokenService {
	if clock == nil {
		clock = time.Now
	}
	return &TokenService{secret: []byte(secret), now: clock}
}

// Issue signs payload with an expiry ttl from now
func (s *TokenService) Issue(payload ResetPayload, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	now := s.now()
	claims := resetClaims{
		UserID:      payload.UserID,
		Purpose:     resetPurpose,
		Fingerprint: payload.Fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Expiry embedded in the signed payload
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate returns the payload of a well-formed, correctly signed, unexpired token.
// Any failure yields ok == false.
func (s *TokenService) Validate(tokenStr string) (ResetPayload, bool) {
	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.Purpose != resetPurpose {
		return ResetPayload{}, false
	}
	return ResetPayload{UserID: claims.UserID, Fingerprint: claims.Fingerprint}, true
}

// Fingerprint derives a short, non-reversible tag from a password hash.
// It changes whenever the password does, which retires every token issued before.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
