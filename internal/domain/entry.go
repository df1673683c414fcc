package domain

import "time" // Timestamps

// LedgerEntry Model
type LedgerEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`            // Primary key
	UserID    uint      `gorm:"index;not null" json:"user_id"`   // Owning user
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"` // When the movement happened
	IsIncome  bool      `gorm:"not null" json:"is_income"`       // Income when true, expense otherwise
	Amount    int64     `gorm:"not null" json:"amount"`          // Amount in the smallest currency unit
	CreatedAt time.Time `json:"created_at"`                      // Row creation time
}

// TableName keeps the table name stable across gorm naming strategies
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
