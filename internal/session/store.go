package session

import (
	"context" // Context for Redis operations
	"errors"  // Sentinel errors
	"strconv" // Key building
	"time"    // Session lifetimes

	"github.com/google/uuid"       // Session IDs
	"github.com/redis/go-redis/v9" // Redis client
)

// ErrNoSession is returned when a session ID is unknown or expired
var ErrNoSession = errors.New("session not found")

// Store keeps live sessions in Redis so they can be revoked before their tokens expire
type Store struct {
	rdb *redis.Client // Redis client
}

// NewStore creates a Redis backed session store
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// sessionKey maps a session ID to its owner
func sessionKey(id string) string {
	return "session:" + id
}

// userKey lists the session IDs of one user
func userKey(userID uint) string {
	return "user_sessions:" + strconv.FormatUint(uint64(userID), 10)
}

// Create registers a new session for userID and returns its ID
func (s *Store) Create(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	id := uuid.NewString() // Random session ID
	owner := strconv.FormatUint(uint64(userID), 10)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(id), owner, ttl)          // Session -> user
	pipe.SAdd(ctx, userKey(userID), id)                // User -> sessions
	pipe.Expire(ctx, userKey(userID), 31*24*time.Hour) // Outlive the longest session
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Lookup returns the user owning a live session
func (s *Store) Lookup(ctx context.Context, id string) (uint, error) {
	v, err := s.rdb.Get(ctx, sessionKey(id)).Uint64()
	if err == redis.Nil {
		return 0, ErrNoSession // Expired or revoked
	} else if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// Revoke ends a single session
func (s *Store) Revoke(ctx context.Context, id string) error {
	userID, err := s.Lookup(ctx, id)
	if errors.Is(err, ErrNoSession) {
		return nil // Nothing to revoke
	} else if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userKey(userID), id)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAll ends every session of a user
func (s *Store) RevokeAll(ctx context.Context, userID uint) error {
	ids, err := s.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey(userID))
	return s.rdb.Del(ctx, keys...).Err()
}
