package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Fixed, detail-free messages for the error surfaces
var statusMessages = map[int]string{
	http.StatusUnauthorized:        "Please log in to access this page",
	http.StatusForbidden:           "You do not have permission to access this page",
	http.StatusNotFound:            "Page not found",
	http.StatusInternalServerError: "Something went wrong. Please try again later",
}

// StatusMessage returns the generic message for an error status
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return http.StatusText(status)
}

// AbortWithStatus stops the chain with the generic body for status
func AbortWithStatus(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, gin.H{"error": StatusMessage(status)})
}

// NotFound renders the generic 404 body for unknown routes
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithStatus(c, http.StatusNotFound)
	}
}

// Recovery turns panics into the generic 500 body; the panic value only goes to the log
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"panic": recovered,          // Panic value
			"path":  c.Request.URL.Path, // Request path
		}).Error("Recovered from panic")
		AbortWithStatus(c, http.StatusInternalServerError)
	})
}
