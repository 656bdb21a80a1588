package auth

import (
	"context"
	"time"

	"github.com/example/storefront/internal/cache"
)

// SessionStore remembers the single live refresh token of each user.
type SessionStore struct {
	cache cache.Cache
}

func NewSessionStore(c cache.Cache) *SessionStore {
	return &SessionStore{cache: c}
}

func sessionKey(userID string) string {
	return "refresh_token:" + userID
}

// Save records tokenID as the user's current refresh token for ttl, replacing
// any previous one.
func (s *SessionStore) Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	return s.cache.Set(ctx, sessionKey(userID), []byte(tokenID), ttl)
}

// Valid reports whether tokenID is the user's current refresh token.
func (s *SessionStore) Valid(ctx context.Context, userID, tokenID string) (bool, error) {
	stored, ok, err := s.cache.Get(ctx, sessionKey(userID))
	if err != nil || !ok {
		return false, err
	}
	return string(stored) == tokenID, nil
}

func (s *SessionStore) Revoke(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, sessionKey(userID))
}
