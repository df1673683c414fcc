package service

import (
	"regexp"       // Input patterns
	"strings"      // Trimming
	"unicode/utf8" // Character counts

	"budget_ledger/internal/domain" // Validation errors
)

// emailPattern is a pragmatic address check; delivery proves the rest
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Field limits, mirrored by the column sizes
const (
	minNameLen     = 2
	maxNameLen     = 20
	maxEmailLen    = 120
	minPasswordLen = 6
)

// validateName checks the display name length
func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minNameLen || n > maxNameLen {
		return domain.NewValidationError("name", "must be %d-%d characters", minNameLen, maxNameLen)
	}
	return nil
}

// validateEmail checks the address shape and length
func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > maxEmailLen || !emailPattern.MatchString(email) {
		return domain.NewValidationError("email", "invalid email address")
	}
	return nil
}

// validatePassword checks the minimum password length
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return domain.NewValidationError("password", "must be at least %d characters", minPasswordLen)
	}
	return nil
}
