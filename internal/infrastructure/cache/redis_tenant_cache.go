package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "tenancy:default:"

// RedisTenantCache shares tenant lookups between service instances
type RedisTenantCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisTenantCache connects to Redis and verifies the connection
func NewRedisTenantCache(ctx context.Context, cfg RedisConfig) (*RedisTenantCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisTenantCacheWithClient(client, ""), nil
}

// NewRedisTenantCacheWithClient wraps an existing client
func NewRedisTenantCacheWithClient(client *redis.Client, keyPrefix string) *RedisTenantCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisTenantCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisTenantCache) key(userID uuid.UUID) string {
	return c.keyPrefix + userID.String()
}

// Get returns the cached tenant of a user
func (c *RedisTenantCache) Get(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	value, err := c.client.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to read tenant cache: %w", err)
	}
	tenantID, err := uuid.Parse(value)
	if err != nil {
		// a corrupt entry is a miss; the caller refreshes it
		return uuid.Nil, false, nil
	}
	return tenantID, true, nil
}

// Set caches the tenant of a user for ttl
func (c *RedisTenantCache) Set(ctx context.Context, userID, tenantID uuid.UUID, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(userID), tenantID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tenant cache: %w", err)
	}
	return nil
}

// Delete drops the cached tenant of a user
func (c *RedisTenantCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete tenant cache entry: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisTenantCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisTenantCache) Close() error {
	return c.client.Close()
}

var _ TenantCache = (*RedisTenantCache)(nil)
