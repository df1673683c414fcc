package domain

import "time" // Timestamps

// DefaultPhoto is the profile image used until the user uploads one
const DefaultPhoto = "default.jpg"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                              // Primary key
	Name         string    `gorm:"size:20;uniqueIndex;not null" json:"name"`          // Unique display name
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`        // Unique login key
	PasswordHash string    `gorm:"size:60;not null" json:"-"`                         // Bcrypt digest, never serialized
	Photo        string    `gorm:"size:64;not null;default:default.jpg" json:"photo"` // Profile image file name
	Admin        bool      `gorm:"not null;default:false" json:"admin"`               // First registered user only
	AdminSlot    *uint     `gorm:"uniqueIndex" json:"-"`                              // 1 on the admin row, NULL elsewhere
	CreatedAt    time.Time `json:"created_at"`                                        // Creation time
	UpdatedAt    time.Time `json:"updated_at"`                                        // Last update time
}
