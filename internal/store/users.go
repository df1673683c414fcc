package store

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Input normalization

	"budget_ledger/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// adminSlot is the only value the unique admin_slot column may hold
const adminSlot uint = 1

// UserStore persists user identities and enforces their uniqueness
type UserStore struct {
	db *gorm.DB // Database handle
}

// NewUserStore creates a UserStore
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// NormalizeEmail trims and lower-cases an email so lookups are case insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. The first user ever created becomes the admin.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	var lastErr error
	// Second attempt only happens when a concurrent registration took the admin slot
	for attempt := 0; attempt < 2; attempt++ {
		user := &domain.User{Name: name, Email: email, PasswordHash: passwordHash, Photo: domain.DefaultPhoto}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := checkUnique(tx, 0, name, email); err != nil {
				return err // Name or email already taken
			}
			if attempt == 0 {
				var count int64 // Existing users
				if err := tx.Model(&domain.User{}).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					slot := adminSlot
					user.Admin = true      // First user
					user.AdminSlot = &slot // Unique index allows a single holder
				}
			}
			return tx.Create(user).Error
		})
		if err == nil {
			return user, nil
		}
		if domain.IsConflict(err) {
			return nil, err
		}
		// A unique index rejected the insert after the pre-check passed
		if conflict := checkUnique(s.db.WithContext(ctx), 0, name, email); conflict != nil {
			return nil, conflict
		}
		lastErr = err
		if !user.Admin {
			break // Nothing to retry without the admin slot
		}
		var admins int64 // Did someone else take the slot?
		if cerr := s.db.WithContext(ctx).Model(&domain.User{}).Where("admin_slot IS NOT NULL").Count(&admins).Error; cerr != nil || admins == 0 {
			break
		}
	}
	return nil, fmt.Errorf("create user: %w", lastErr)
}

// checkUnique returns a ConflictError when name or email belongs to a user other than exceptID
func checkUnique(tx *gorm.DB, exceptID uint, name, email string) error {
	var existing []domain.User // At most two rows can collide
	q := tx.Select("id", "name", "email").Where("name = ? OR email = ?", name, email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Limit(2).Find(&existing).Error; err != nil {
		return err
	}
	for _, u := range existing {
		if u.Email == email {
			return &domain.ConflictError{Field: "email"}
		}
	}
	if len(existing) > 0 {
		return &domain.ConflictError{Field: "name"}
	}
	return nil
}

// FindByEmail looks up a user by login email
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "email = ?", NormalizeEmail(email))
}

// FindByName looks up a user by display name
func (s *UserStore) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return s.findOne(ctx, "name = ?", strings.TrimSpace(name))
}

// FindByID looks up a user by primary key
func (s *UserStore) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.findOne(ctx, "id = ?", id)
}

// findOne returns the first user matching the condition or ErrNotFound
func (s *UserStore) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// UpdateProfile changes name, email and, when photo is not empty, the profile photo
func (s *UserStore) UpdateProfile(ctx context.Context, id uint, name, email, photo string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	var user domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if err := checkUnique(tx, id, name, email); err != nil {
			return err // Another user owns the new name or email
		}
		updates := map[string]any{"name": name, "email": email} // Admin flag is never touched
		if photo != "" {
			updates["photo"] = photo
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		user.Name, user.Email = name, email // Reflect the new values
		if photo != "" {
			user.Photo = photo
		}
		return nil
	})
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrNotFound
	case domain.IsConflict(err):
		return nil, err
	}
	if conflict := checkUnique(s.db.WithContext(ctx), id, name, email); conflict != nil {
		return nil, conflict // Lost a race against another update
	}
	return nil, fmt.Errorf("update profile: %w", err)
}

// UpdatePassword stores a new password digest
func (s *UserStore) UpdatePassword(ctx context.Context, id uint, newHash string) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password_hash", newHash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a page of users ordered by ID and the total user count
func (s *UserStore) List(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	var total int64 // Total user count
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users := make([]domain.User, 0, pageSize)
	if err := s.db.WithContext(ctx).Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}
