package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"budget_ledger/internal/domain" // Importing domain models
	"budget_ledger/internal/store"  // User and Ledger Stores
	"budget_ledger/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// adminCacheTTL bounds how stale admin listings may be
const adminCacheTTL = 60 * time.Second

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID        uint      `json:"id"`         // User ID
	Name      string    `json:"name"`       // Display name
	Email     string    `json:"email"`      // Login email
	Admin     bool      `json:"admin"`      // Admin flag
	CreatedAt time.Time `json:"created_at"` // Registration time
}

// adminUsersPage is the cached shape of the users listing
type adminUsersPage struct {
	Users      []UserAdminResponse `json:"users"`       // List of users
	Page       int                 `json:"page"`        // Current page
	PageSize   int                 `json:"page_size"`   // Page size
	Total      int64               `json:"total"`       // Total number of users
	TotalPages int                 `json:"total_pages"` // Total pages
	Cached     bool                `json:"cached"`      // Indicate response is from cache
}

// adminEntriesPage is the cached shape of the entries listing
type adminEntriesPage struct {
	Entries    []domain.LedgerEntry `json:"entries"`     // List of entries
	Page       int                  `json:"page"`        // Current page
	PageSize   int                  `json:"page_size"`   // Page size
	Total      int64                `json:"total"`       // Total number of entries
	TotalPages int                  `json:"total_pages"` // Total pages
	Cached     bool                 `json:"cached"`      // Indicate response is from cache
}

// paging reads page and page_size query parameters
func paging(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= store.MaxPageSize {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// ListUsersHandler returns all users for the admin view
func ListUsersHandler(users *store.UserStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Cancelled with the request
		page, pageSize := paging(c)
		// Create a cache key based on pagination parameters
		cacheKey := utils.AdminUsersCachePrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached adminUsersPage
		// If cached data found, return it
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				cached.Cached = true // Indicate response is from cache
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		list, total, err := users.List(ctx, page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		// Map users to response format
		resp := adminUsersPage{
			Users:      make([]UserAdminResponse, len(list)),
			Page:       page,                                   // Current page
			PageSize:   pageSize,                               // Page size
			Total:      total,                                  // Total number of users
			TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
		}
		for i, u := range list {
			resp.Users[i] = UserAdminResponse{ID: u.ID, Name: u.Name, Email: u.Email, Admin: u.Admin, CreatedAt: u.CreatedAt}
		}
		// Cache the response for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, adminCacheTTL)
		}
		c.JSON(http.StatusOK, resp) // Return the response
	}
}

// ListEntriesAdminHandler returns every user's entries, optionally filtered by user_id
func ListEntriesAdminHandler(entries *store.LedgerStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Cancelled with the request
		page, pageSize := paging(c)
		var userID uint // Zero means all users
		if raw := c.Query("user_id"); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestMessage})
				return
			}
			userID = uint(v)
		}
		// Build cache key from all query params
		keyParts := []string{
			"user_id=" + strconv.FormatUint(uint64(userID), 10),
			"page=" + strconv.Itoa(page),
			"page_size=" + strconv.Itoa(pageSize),
		}
		cacheKey := utils.AdminEntriesCachePrefix + strings.Join(keyParts, ":")
		var cached adminEntriesPage
		// If cached data found, return it
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				cached.Cached = true
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		list, total, err := entries.ListAll(ctx, page, pageSize, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := adminEntriesPage{
			Entries:    list,                                   // List of entries
			Page:       page,                                   // Current page
			PageSize:   pageSize,                               // Page size
			Total:      total,                                  // Total number of entries
			TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
		}
		// Cache the response for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, adminCacheTTL)
		}
		c.JSON(http.StatusOK, resp) // Return the response
	}
}
