package api

import (
	"net/http" // HTTP status codes

	"budget_ledger/internal/middleware" // Session cookie name
	"budget_ledger/internal/service"    // Auth Controller

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request and Response structs
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`     // Display name must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Remember bool   `json:"remember"`                    // Keep the session for 30 days
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // Session token, also set as cookie
}

// Request struct for a reset link
type ResetRequest struct {
	Email string `json:"email" binding:"required"` // Email must be provided
}

// Request struct for choosing a new password
type ResetConfirmRequest struct {
	Password string `json:"password" binding:"required"` // New password must be provided
}

// RegisterHandler creates an account; the caller must log in afterwards
func RegisterHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestMessage})
			return
		}
		if _, err := auth.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
			respondError(c, err) // Duplicate or invalid input
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Registration successful. You can now log in"})
	}
}

// LoginHandler authenticates a user and starts a session
func LoginHandler(auth *service.AuthService, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestMessage})
			return
		}
		res, err := auth.Login(c.Request.Context(), req.Email, req.Password, req.Remember)
		if err != nil {
			respondError(c, err) // Same message for unknown email and wrong password
			return
		}
		maxAge := 0 // Browser session cookie
		if req.Remember {
			maxAge = int(res.TTL.Seconds()) // Persist across browser restarts
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookieName, res.Token, maxAge, "/", "", secureCookie, true)
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: res.Token})
	}
}

// LogoutHandler ends the current session
func LogoutHandler(auth *service.AuthService, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.Request.Context(), c.GetString(middleware.SessionTokenKey)); err != nil {
			respondError(c, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", secureCookie, true) // Clear cookie
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// ResetRequestHandler sends a reset link; the answer is the same whether the email exists or not
func ResetRequestHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestMessage})
			return
		}
		auth.RequestPasswordReset(c.Request.Context(), req.Email)
		c.JSON(http.StatusOK, gin.H{"message": resetRequestedMessage})
	}
}

// ResetConfirmHandler sets a new password using the token from the reset link
func ResetConfirmHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetConfirmRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestMessage})
			return
		}
		if err := auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
			respondError(c, err) // TokenInvalid or weak password
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Your password has been updated. You can now log in"})
	}
}
