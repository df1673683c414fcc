package domain

import (
	"errors" // Sentinel errors
	"fmt"    // Error formatting
)

// Sentinel errors shared by stores, services and handlers
var (
	ErrNotFound             = errors.New("not found")             // Missing resource
	ErrAuthenticationFailed = errors.New("authentication failed") // Generic, non-disclosing
	ErrTokenInvalid         = errors.New("reset token invalid")   // Expired or tampered token
	ErrForbidden            = errors.New("forbidden")             // Authenticated but not allowed
	ErrUnauthenticated      = errors.New("unauthenticated")       // No live session
)

// ValidationError reports bad or duplicate input that can be shown inline
type ValidationError struct {
	Field   string // Offending field, empty when not field specific
	Message string // Human readable message
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for a field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation caught at the store level
type ConflictError struct {
	Field string // "name" or "email"
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
