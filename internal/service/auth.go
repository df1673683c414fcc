package service

import (
	"context"       // Request scoped cancellation
	"crypto/subtle" // Constant time fingerprint comparison
	"errors"        // Error inspection
	"fmt"           // Error wrapping
	"time"          // Session lifetimes

	"budget_ledger/internal/domain"  // Domain models and errors
	"budget_ledger/internal/notify"  // Reset notifications
	"budget_ledger/internal/session" // Session registry
	"budget_ledger/internal/store"   // Persistence
	"budget_ledger/internal/utils"   // Hashing and tokens

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// Session lifetimes
const (
	SessionTTL  = 24 * time.Hour      // Default login
	RememberTTL = 30 * 24 * time.Hour // Login with "remember me"
)

// PhotoSaver stores an uploaded profile photo and returns its file name
type PhotoSaver interface {
	Save(data []byte) (string, error)
	Remove(name string) error
}

// AuthConfig wires the collaborators of AuthService
type AuthConfig struct {
	Users        *store.UserStore    // User Store
	Sessions     *session.Store      // Live sessions
	Hasher       *utils.Hasher       // Password Hasher
	Tokens       *utils.TokenService // Signed Token Service
	Notifier     notify.Notifier     // Out-of-band reset delivery
	Photos       PhotoSaver          // Profile photo storage
	Cache        *redis.Client       // Admin listing cache to invalidate, may be nil
	Secret       string              // Session token signing key
	ResetURLBase string              // Link prefix for reset notifications
	ResetTTL     time.Duration       // Reset token lifetime
}

// LoginResult is returned on successful login
type LoginResult struct {
	Token string        // Session token
	User  *domain.User  // Authenticated user
	TTL   time.Duration // Session lifetime
}

// AuthService drives registration, login, logout and password reset
type AuthService struct {
	cfg       AuthConfig
	dummyHash string // Verified against when the email is unknown, to keep timing uniform
}

// NewAuthService creates an AuthService
func NewAuthService(cfg AuthConfig) (*AuthService, error) {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = utils.DefaultResetTTL
	}
	dummy, err := cfg.Hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &AuthService{cfg: cfg, dummyHash: dummy}, nil
}

// Register creates an account. The caller stays anonymous and must log in explicitly.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	for _, err := range []error{validateName(name), validateEmail(email), validatePassword(password)} {
		if err != nil {
			return nil, err
		}
	}
	// Friendly pre-check; the store enforces uniqueness again on insert
	if _, err := s.cfg.Users.FindByName(ctx, name); err == nil {
		return nil, domain.NewValidationError("name", "this name is already taken")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.cfg.Users.FindByEmail(ctx, email); err == nil {
		return nil, domain.NewValidationError("email", "this email is already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := s.cfg.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user, err := s.cfg.Users.Create(ctx, name, email, hash)
	if err != nil {
		return nil, conflictToValidation(err)
	}
	s.invalidateUsersCache(ctx)
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,    // New user
		"admin":   user.Admin, // First user only
	}).Info("User registered")
	return user, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error) {
	user, err := s.cfg.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.cfg.Hasher.Verify(s.dummyHash, password) // Same cost as a real check
		return nil, domain.ErrAuthenticationFailed
	} else if err != nil {
		return nil, err
	}
	if !s.cfg.Hasher.Verify(user.PasswordHash, password) {
		logrus.WithField("user_id", user.ID).Warn("Login failed")
		return nil, domain.ErrAuthenticationFailed
	}
	ttl := SessionTTL
	if remember {
		ttl = RememberTTL // Extended persistence
	}
	sid, err := s.cfg.Sessions.Create(ctx, user.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := utils.GenerateJWT(user.ID, sid, ttl, s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	logrus.WithField("user_id", user.ID).Info("User logged in")
	return &LoginResult{Token: token, User: user, TTL: ttl}, nil
}

// Authenticate resolves a session token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := utils.ParseJWT(token, s.cfg.Secret)
	if err != nil {
		return nil, domain.ErrUnauthenticated // Malformed, forged or expired
	}
	userID, err := s.cfg.Sessions.Lookup(ctx, claims.ID)
	if errors.Is(err, session.ErrNoSession) || (err == nil && userID != claims.UserID) {
		return nil, domain.ErrUnauthenticated // Logged out or revoked
	} else if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	user, err := s.cfg.Users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	return user, err
}

// Logout revokes the session behind token; unknown tokens are ignored
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := utils.ParseJWT(token, s.cfg.Secret)
	if err != nil {
		return nil // Already anonymous
	}
	if err := s.cfg.Sessions.Revoke(ctx, claims.ID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	logrus.WithField("user_id", claims.UserID).Info("User logged out")
	return nil
}

// RequestPasswordReset sends a reset link when email belongs to a user.
// It reports nothing back, so callers cannot learn which emails exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	user, err := s.cfg.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return // No token, no notification
	} else if err != nil {
		logrus.WithError(err).Error("Password reset lookup failed")
		return
	}
	token, err := s.cfg.Tokens.Issue(utils.ResetPayload{
		UserID:      user.ID,                              // Reset target
		Fingerprint: utils.Fingerprint(user.PasswordHash), // Retired by the next password change
	}, s.cfg.ResetTTL)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue reset token")
		return
	}
	msg := notify.ResetMessage{UserID: user.ID, Email: user.Email, Name: user.Name, URL: s.cfg.ResetURLBase + token}
	if err := s.cfg.Notifier.SendPasswordReset(ctx, msg); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to dispatch reset notification")
	}
}

// ResetPassword sets a new password for the user named by a valid reset token.
// Tokens are single use: the new hash no longer matches their fingerprint.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	payload, ok := s.cfg.Tokens.Validate(token)
	if !ok {
		return domain.ErrTokenInvalid
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.cfg.Users.FindByID(ctx, payload.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrTokenInvalid
	} else if err != nil {
		return err
	}
	current := utils.Fingerprint(user.PasswordHash)
	if subtle.ConstantTimeCompare([]byte(current), []byte(payload.Fingerprint)) != 1 {
		return domain.ErrTokenInvalid // Already used, or superseded by another change
	}
	hash, err := s.cfg.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.cfg.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.cfg.Sessions.RevokeAll(ctx, user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to revoke sessions after reset")
	}
	logrus.WithField("user_id", user.ID).Info("Password reset")
	return nil
}

// UpdateProfile changes the caller's name and email, and the photo when one is uploaded
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, name, email string, photo []byte) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	var filename string // Empty keeps the current photo
	if len(photo) > 0 {
		var err error
		if filename, err = s.cfg.Photos.Save(photo); err != nil {
			return nil, err
		}
	}
	updated, err := s.cfg.Users.UpdateProfile(ctx, user.ID, name, email, filename)
	if err != nil {
		if filename != "" {
			// The stored thumbnail belongs to no one
			if rerr := s.cfg.Photos.Remove(filename); rerr != nil {
				logrus.WithError(rerr).WithField("photo", filename).Warn("Failed to remove orphaned photo")
			}
		}
		return nil, conflictToValidation(err)
	}
	s.invalidateUsersCache(ctx)
	logrus.WithField("user_id", user.ID).Info("Profile updated")
	return updated, nil
}

// invalidateUsersCache drops the cached admin users listing
func (s *AuthService) invalidateUsersCache(ctx context.Context) {
	if s.cfg.Cache == nil {
		return
	}
	if err := utils.DeleteCachePrefix(ctx, s.cfg.Cache, utils.AdminUsersCachePrefix); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate admin users cache")
	}
}

// conflictToValidation reports store level uniqueness violations as inline validation errors
func conflictToValidation(err error) error {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return domain.NewValidationError(conflict.Field, "already exists")
	}
	return err
}
