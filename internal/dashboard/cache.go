package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "devisflow:dashboard"

// LookupRecorder counts cache hits and misses.
type LookupRecorder interface {
	CacheLookup(cache string, hit bool)
}

// Cache is a per-user versioned JSON cache. Bumping a user's version makes
// every key built before the bump unreachable; stale entries expire by TTL.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	group    singleflight.Group
	recorder LookupRecorder
}

// NewCache instantiates the cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, recorder LookupRecorder) *Cache {
	return &Cache{client: client, ttl: ttl, recorder: recorder}
}

func versionKey(userID string) string {
	return keyPrefix + ":version:" + userID
}

// Version returns the current cache version of userID, initialising when missing.
func (c *Cache) Version(ctx context.Context, userID string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX so a concurrent Bump is not overwritten.
		if err := c.client.SetNX(ctx, versionKey(userID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey(userID)).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes a cache key carrying the user's current version.
func (c *Cache) BuildKey(ctx context.Context, userID string, parts ...string) (string, error) {
	joined := strings.Join(append([]string{keyPrefix, userID}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using loader. Concurrent
// misses on the same key share one loader call.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return load(ctx, loader, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.record(true)
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	c.record(false)

	ch := c.group.DoChan(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Bump invalidates every cached entry of userID.
func (c *Cache) Bump(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(userID)).Err()
}

func (c *Cache) record(hit bool) {
	if c.recorder != nil {
		c.recorder.CacheLookup("dashboard", hit)
	}
}

func load(ctx context.Context, loader func(context.Context) (any, error), dest any) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
