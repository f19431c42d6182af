// Package rediscache provides Redis-backed caches for read-heavy
// aggregations. Every cache degrades to a no-op when constructed without a
// client, so callers never need a Redis deployment to run.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tagListKey = "conduit:tags"

// TagCache caches the distinct tag list in Redis under a single key with a
// TTL. A nil client makes every operation a cache miss.
type TagCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTagCache creates a TagCache. client may be nil to disable caching;
// a non-positive ttl defaults to five minutes.
func NewTagCache(client *redis.Client, ttl time.Duration) *TagCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TagCache{client: client, ttl: ttl}
}

// Get returns the cached tag list, reporting ok=false on a miss.
func (c *TagCache) Get(ctx context.Context) ([]string, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	payload, err := c.client.Get(ctx, tagListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read tag cache: %w", err)
	}

	var tags []string
	if err := json.Unmarshal(payload, &tags); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return nil, false, nil
	}

	return tags, true, nil
}

// Set replaces the cached tag list.
func (c *TagCache) Set(ctx context.Context, tags []string) error {
	if c.client == nil {
		return nil
	}

	payload, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tag cache entry: %w", err)
	}

	if err := c.client.Set(ctx, tagListKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tag cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached tag list.
func (c *TagCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, tagListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tag cache: %w", err)
	}
	return nil
}
