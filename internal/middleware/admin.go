package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware lets through only users holding the admin flag
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c) // Loaded fresh from the database by the session middleware
		// Check if a session user exists
		if !ok {
			AbortWithStatus(c, http.StatusUnauthorized)
			return
		}
		// Check the admin flag
		if !user.Admin {
			AbortWithStatus(c, http.StatusForbidden)
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
