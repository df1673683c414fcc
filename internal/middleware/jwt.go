package middleware

import (
	"context"  // Request context
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"budget_ledger/internal/domain" // Domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Context keys and cookie name shared with the handlers
const (
	CurrentUserKey    = "currentUser"  // *domain.User of the session
	SessionTokenKey   = "sessionToken" // Raw session token
	SessionCookieName = "session"      // Cookie carrying the session token
)

// Authenticator resolves a session token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// SessionToken extracts the session token from the cookie or the Authorization header
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
	}
	return ""
}

// SessionAuthMiddleware validates the session token and stores the user in the context
func SessionAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		// Check if a token was presented at all
		if token == "" {
			AbortWithStatus(c, http.StatusUnauthorized)
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), token) // Verify token and live session
		if errors.Is(err, domain.ErrUnauthenticated) {
			AbortWithStatus(c, http.StatusUnauthorized)
			return
		} else if err != nil {
			logrus.WithError(err).Error("Session lookup failed")
			AbortWithStatus(c, http.StatusInternalServerError)
			return
		}
		c.Set(CurrentUserKey, user)   // Store user in context
		c.Set(SessionTokenKey, token) // Needed by logout
		c.Next()                      // Proceed to the next handler
	}
}

// CurrentUser returns the session user stored by SessionAuthMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}
