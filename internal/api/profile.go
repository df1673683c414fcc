package api

import (
	"errors"   // Upload errors
	"io"       // Reading uploads
	"net/http" // HTTP status codes

	"budget_ledger/internal/domain"  // Domain models
	"budget_ledger/internal/service" // Auth Controller

	"github.com/gin-gonic/gin" // Gin web framework
)

// maxPhotoBytes caps profile photo uploads
const maxPhotoBytes = 5 << 20

// photoURLPrefix is where stored photos are served from
const photoURLPrefix = "/static/profile_pics/"

// ProfileResponse is the account view of a user
type ProfileResponse struct {
	ID       uint   `json:"id"`        // User ID
	Name     string `json:"name"`      // Display name
	Email    string `json:"email"`     // Login email
	PhotoURL string `json:"photo_url"` // Thumbnail location
	Admin    bool   `json:"admin"`     // Admin flag
}

// newProfileResponse maps a user to its account view
func newProfileResponse(u *domain.User) ProfileResponse {
	return ProfileResponse{ID: u.ID, Name: u.Name, Email: u.Email, PhotoURL: photoURLPrefix + u.Photo, Admin: u.Admin}
}

// GetAccountHandler returns the session user's profile
func GetAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": newProfileResponse(user)})
	}
}

// UpdateAccountHandler changes name, email and optionally the photo of the session user
func UpdateAccountHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes+1<<20) // Photo plus form fields
		var photo []byte                                                                    // Empty keeps the current photo
		if fh, err := c.FormFile("photo"); err == nil {
			if fh.Size > maxPhotoBytes {
				c.JSON(http.StatusBadRequest, gin.H{"error": "photo is too large", "field": "photo"})
				return
			}
			f, err := fh.Open()
			if err != nil {
				respondError(c, err)
				return
			}
			defer f.Close()
			if photo, err = io.ReadAll(f); err != nil {
				respondError(c, err)
				return
			}
		} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestMessage})
			return
		}
		updated, err := auth.UpdateProfile(c.Request.Context(), user, c.PostForm("name"), c.PostForm("email"), photo)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": newProfileResponse(updated)})
	}
}
