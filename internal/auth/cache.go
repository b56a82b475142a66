package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "devisflow:session:"

// SessionCache keeps resolved sessions in redis so most requests skip the
// sessions table. Only the session is cached; users are always reloaded.
type SessionCache struct {
	client *redis.Client
	maxTTL time.Duration
}

// NewSessionCache returns a cache bounding entries to maxTTL.
func NewSessionCache(client *redis.Client, maxTTL time.Duration) *SessionCache {
	if maxTTL <= 0 {
		maxTTL = 5 * time.Minute
	}
	return &SessionCache{client: client, maxTTL: maxTTL}
}

// Get returns the cached session, or false on a miss.
func (c *SessionCache) Get(ctx context.Context, token string) (*Session, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

// Set stores the session until it expires or maxTTL elapses, whichever is first.
func (c *SessionCache) Set(ctx context.Context, s *Session, now time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}
	ttl := s.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	if ttl > c.maxTTL {
		ttl = c.maxTTL
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKeyPrefix+s.Token, raw, ttl).Err()
}
