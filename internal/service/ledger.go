package service

import (
	"context" // Request scoped cancellation
	"fmt"     // Cache keys
	"time"    // Cache lifetime

	"budget_ledger/internal/domain" // Domain models
	"budget_ledger/internal/store"  // Persistence
	"budget_ledger/internal/utils"  // Cache helpers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// LedgerPageSize is the fixed number of entries per ledger page
const LedgerPageSize = store.DefaultPageSize

// ledgerCacheTTL bounds how stale a cached page may be
const ledgerCacheTTL = 60 * time.Second

// LedgerPage is one page of a user's ledger plus pagination metadata
type LedgerPage struct {
	Entries    []domain.LedgerEntry `json:"entries"`     // Newest first
	Page       int                  `json:"page"`        // Current page
	PageSize   int                  `json:"page_size"`   // Page size
	Total      int64                `json:"total"`       // Total entries of the user
	TotalPages int                  `json:"total_pages"` // Total pages
	HasMore    bool                 `json:"has_more"`    // Another page follows
	Cached     bool                 `json:"cached"`      // Served from Redis
}

// LedgerService serves the session user's ledger; the user ID never comes from request input
type LedgerService struct {
	ledger *store.LedgerStore // Ledger Store
	rdb    *redis.Client      // Page cache, nil disables caching
}

// NewLedgerService creates a LedgerService
func NewLedgerService(ledger *store.LedgerStore, rdb *redis.Client) *LedgerService {
	return &LedgerService{ledger: ledger, rdb: rdb}
}

// cachePrefix groups all cached pages of a user
func cachePrefix(userID uint) string {
	return fmt.Sprintf("ledger:user:%d:", userID)
}

// GetPage returns the requested page of user's entries
func (s *LedgerService) GetPage(ctx context.Context, user *domain.User, page int) (*LedgerPage, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if page < 1 {
		page = 1 // Default page
	}
	cacheKey := fmt.Sprintf("%spage:%d", cachePrefix(user.ID), page) // Per-user key
	if s.rdb != nil {
		var cached LedgerPage
		if found, err := utils.GetCache(ctx, s.rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			return &cached, nil
		}
	}
	entries, hasMore, err := s.ledger.ListForUser(ctx, user.ID, page, LedgerPageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.ledger.CountForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	result := &LedgerPage{
		Entries:    entries,                                            // Page items
		Page:       page,                                               // Current page
		PageSize:   LedgerPageSize,                                     // Page size
		Total:      total,                                              // Total entries
		TotalPages: (int(total) + LedgerPageSize - 1) / LedgerPageSize, // Calculate total pages
		HasMore:    hasMore,                                            // More pages follow
	}
	if s.rdb != nil {
		_ = utils.SetCache(ctx, s.rdb, cacheKey, result, ledgerCacheTTL) // Best effort
	}
	return result, nil
}

// AddEntry records an entry for user. amount is a positive magnitude; isIncome gives the direction.
func (s *LedgerService) AddEntry(ctx context.Context, user *domain.User, isIncome bool, amount int64, timestamp *time.Time) (*domain.LedgerEntry, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be greater than zero")
	}
	entry, err := s.ledger.CreateEntry(ctx, user.ID, isIncome, amount, timestamp)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		// Every cached page of this user and of the admin listing may now be shifted
		for _, prefix := range []string{cachePrefix(user.ID), utils.AdminEntriesCachePrefix} {
			if err := utils.DeleteCachePrefix(ctx, s.rdb, prefix); err != nil {
				logrus.WithError(err).WithField("prefix", prefix).Warn("Failed to invalidate ledger cache")
			}
		}
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   user.ID,  // Owner
		"entry_id":  entry.ID, // New entry
		"is_income": isIncome, // Direction
	}).Info("Ledger entry created")
	return entry, nil
}
