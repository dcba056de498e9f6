// Package cache holds the Redis-backed session caches.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// Client is the subset of redis.Client this package needs; the test suite
// substitutes an in-memory implementation.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRoleCache keeps a session's resolved role for its TTL.
type RedisRoleCache struct {
	client Client
}

var _ ports.RoleCache = (*RedisRoleCache)(nil)

func NewRedisRoleCache(client Client) *RedisRoleCache {
	return &RedisRoleCache{client: client}
}

func roleKey(userID string) string { return "session:role:" + userID }

func (c *RedisRoleCache) Get(ctx context.Context, userID string) (domain.Role, error) {
	val, err := c.client.Get(ctx, roleKey(userID)).Result()
	if err == redis.Nil {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return domain.Role(val), nil
}

func (c *RedisRoleCache) Set(ctx context.Context, userID string, role domain.Role, ttl time.Duration) error {
	return c.client.Set(ctx, roleKey(userID), string(role), ttl).Err()
}

func (c *RedisRoleCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, roleKey(userID)).Err()
}

// RedisTokenBlacklist voids signed-out tokens until they expire.
type RedisTokenBlacklist struct {
	client Client
}

var _ ports.TokenBlacklist = (*RedisTokenBlacklist)(nil)

func NewRedisTokenBlacklist(client Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func tokenKey(hash string) string { return "token:revoked:" + hash }

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	return b.client.Set(ctx, tokenKey(tokenHash), "1", ttl).Err()
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := b.client.Exists(ctx, tokenKey(tokenHash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
