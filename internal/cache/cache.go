// Package cache provides the Redis-backed report cache. Callers hold
// it as an explicit collaborator and scope every key by organization
// and entity kind, so one tenant's invalidation never touches another.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/outreach-analytics/internal/pkg/logger"
)

// Cache wraps a Redis client with JSON serialization and a default
// TTL. All operations are best effort: a cache failure degrades to a
// miss, never to a request failure.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Cache around an existing Redis client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key builds a cache key from the tenant scope and the request
// parameters. Parameters are hashed so arbitrary filter combinations
// stay within Redis key length limits.
func Key(orgID, kind string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("insights:%s:%s:%s", orgID, kind, hex.EncodeToString(sum[:])[:12])
}

// Prefix returns the key prefix covering every cached report for one
// organization and kind. Pass it to DeleteByPrefix on invalidation.
func Prefix(orgID, kind string) string {
	return fmt.Sprintf("insights:%s:%s:", orgID, kind)
}

// OrgPrefix returns the key prefix covering all of an organization's
// cached reports across every entity kind.
func OrgPrefix(orgID string) string {
	return fmt.Sprintf("insights:%s:", orgID)
}

// Get loads the cached value for key into dst. Returns false on miss,
// on Redis errors, and on payloads that no longer unmarshal.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Debug("cache entry unreadable, treating as miss", "key", key, "error", err.Error())
		return false
	}
	return true
}

// Set stores val under key with the default TTL. Failures are logged
// and swallowed; the caller already has the value.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		logger.Debug("cache marshal failed", "key", key, "error", err.Error())
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Debug("cache set failed", "key", key, "error", err.Error())
	}
}

// DeleteByPrefix removes every key under prefix using SCAN, so large
// keyspaces are walked incrementally instead of blocking Redis.
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete cache key %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}
