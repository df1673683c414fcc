package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Entry timestamps

	"budget_ledger/internal/service" // Ledger Query Service

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateEntryRequest represents a new income or expense
type CreateEntryRequest struct {
	IsIncome  *bool      `json:"is_income" binding:"required"`   // Direction must be provided
	Amount    int64      `json:"amount" binding:"required,gt=0"` // Positive amount in the smallest unit
	Timestamp *time.Time `json:"timestamp"`                      // Defaults to now
}

// ListEntriesHandler returns one page of the session user's ledger
func ListEntriesHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c) // Session user only, never a request parameter
		if !ok {
			return
		}
		page := 1 // Default page
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		result, err := ledger.GetPage(c.Request.Context(), user, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result) // Return the page with its metadata
	}
}

// CreateEntryHandler records an entry for the session user
func CreateEntryHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		var req CreateEntryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestMessage})
			return
		}
		entry, err := ledger.AddEntry(c.Request.Context(), user, *req.IsIncome, req.Amount, req.Timestamp)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"entry": entry})
	}
}
