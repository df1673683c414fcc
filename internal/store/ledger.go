package store

import (
	"context" // Request scoped cancellation
	"fmt"     // Error wrapping
	"time"    // Entry timestamps

	"budget_ledger/internal/domain" // Importing domain models

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Quoted ordering
)

// newestFirst orders entries by timestamp, then insertion order, descending
var newestFirst = []clause.OrderByColumn{
	{Column: clause.Column{Name: "timestamp"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}

// LedgerStore persists ledger entries, always scoped to their owner
type LedgerStore struct {
	db  *gorm.DB         // Database handle
	now func() time.Time // Default timestamp source
}

// NewLedgerStore creates a LedgerStore
func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db, now: time.Now}
}

// CreateEntry records an entry for userID; a nil or zero timestamp means now
func (s *LedgerStore) CreateEntry(ctx context.Context, userID uint, isIncome bool, amount int64, timestamp *time.Time) (*domain.LedgerEntry, error) {
	ts := s.now()
	if timestamp != nil && !timestamp.IsZero() {
		ts = *timestamp
	}
	entry := &domain.LedgerEntry{
		UserID:    userID,   // Owner
		Timestamp: ts.UTC(), // Stored in UTC so ordering is consistent
		IsIncome:  isIncome, // Direction
		Amount:    amount,   // Smallest currency unit
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64 // Owner must exist
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).Count(&owners).Error; err != nil {
			return err
		}
		if owners == 0 {
			return domain.ErrNotFound
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return entry, nil
}

// ListForUser returns one page of userID's entries, newest first, and whether more pages follow.
// Pages past the end are empty.
func (s *LedgerStore) ListForUser(ctx context.Context, userID uint, page, pageSize int) ([]domain.LedgerEntry, bool, error) {
	page, pageSize = normalizePage(page, pageSize)
	entries := make([]domain.LedgerEntry, 0, pageSize+1)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID). // Only the owner's rows
		Order(clause.OrderBy{Columns: newestFirst}).
		Offset((page - 1) * pageSize).
		Limit(pageSize + 1). // One extra row tells whether another page exists
		Find(&entries).Error
	if err != nil {
		return nil, false, fmt.Errorf("list entries: %w", err)
	}
	hasMore := len(entries) > pageSize
	if hasMore {
		entries = entries[:pageSize]
	}
	return entries, hasMore, nil
}

// CountForUser returns how many entries userID owns
func (s *LedgerStore) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.LedgerEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return total, nil
}

// ListAll returns a page of every user's entries for the admin view; userID 0 means all users
func (s *LedgerStore) ListAll(ctx context.Context, page, pageSize int, userID uint) ([]domain.LedgerEntry, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := s.db.WithContext(ctx).Model(&domain.LedgerEntry{}) // Start building the query
	if userID != 0 {
		query = query.Where("user_id = ?", userID) // Filter by user ID
	}
	query = query.Session(&gorm.Session{}) // Reusable for count and fetch
	var total int64                        // Total entry count
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}
	entries := make([]domain.LedgerEntry, 0, pageSize)
	if err := query.Order(clause.OrderBy{Columns: newestFirst}).Offset((page - 1) * pageSize).Limit(pageSize).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	return entries, total, nil
}
