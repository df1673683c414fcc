package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"budget_ledger/internal/domain"     // Typed domain errors
	"budget_ledger/internal/middleware" // Generic error bodies

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// User facing messages
const (
	loginFailedMessage    = "Login failed. Check your email and password"
	tokenInvalidMessage   = "The reset link is invalid or has expired"
	resetRequestedMessage = "If the email is registered, password reset instructions have been sent to it"
	invalidRequestMessage = "Invalid request"
)

// respondError maps a service error to its response; unexpected errors never leak detail
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field}) // Shown inline
	case errors.Is(err, domain.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": loginFailedMessage})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": tokenInvalidMessage})
	case errors.Is(err, domain.ErrUnauthenticated):
		middleware.AbortWithStatus(c, http.StatusUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		middleware.AbortWithStatus(c, http.StatusForbidden)
	case errors.Is(err, domain.ErrNotFound):
		middleware.AbortWithStatus(c, http.StatusNotFound)
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route pattern
			"error": err.Error(),  // Internal detail stays in the log
		}).Error("Request failed")
		middleware.AbortWithStatus(c, http.StatusInternalServerError)
	}
}

// currentUser fetches the session user or answers 401
func currentUser(c *gin.Context) (*domain.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.AbortWithStatus(c, http.StatusUnauthorized)
	}
	return user, ok
}
