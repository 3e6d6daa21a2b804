package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisPresenceCache is a distributed PresenceCache, so several listen daemons
// can share one view of what each player is showing.
type RedisPresenceCache[K comparable, V any] struct {
	redisClient *redis.Client
	logger      zerolog.Logger
	ttl         time.Duration
	prefix      string
}

// NewRedisPresenceCache creates a presence cache on an existing client.
func NewRedisPresenceCache[K comparable, V any](
	cfg *RedisConfig,
	client *redis.Client,
	logger zerolog.Logger,
) (*RedisPresenceCache[K, V], error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisPresenceCache[K, V]{
		redisClient: client,
		logger:      logger.With().Str("component", "RedisPresenceCache").Logger(),
		ttl:         cfg.CacheTTL,
		prefix:      cfg.KeyPrefix,
	}, nil
}

func (c *RedisPresenceCache[K, V]) key(key K) string {
	return fmt.Sprintf("%s%v", c.prefix, key)
}

// Set marshals the value to JSON and stores it with the configured TTL.
func (c *RedisPresenceCache[K, V]) Set(ctx context.Context, key K, value V) error {
	stringKey := c.key(key)
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal presence data for key %s: %w", stringKey, err)
	}
	if err := c.redisClient.Set(ctx, stringKey, jsonData, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set presence in redis for key %s: %w", stringKey, err)
	}
	return nil
}

// Fetch retrieves and unmarshals a value.
func (c *RedisPresenceCache[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	var zero V
	stringKey := c.key(key)
	cachedData, err := c.redisClient.Get(ctx, stringKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, fmt.Errorf("key '%v' not in presence cache: %w", key, ErrNotFound)
		}
		return zero, fmt.Errorf("redis get failed for key %s: %w", stringKey, err)
	}
	var value V
	if err := json.Unmarshal(cachedData, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal presence data for key %s: %w", stringKey, err)
	}
	return value, nil
}

// Delete removes a key.
func (c *RedisPresenceCache[K, V]) Delete(ctx context.Context, key K) error {
	stringKey := c.key(key)
	if err := c.redisClient.Del(ctx, stringKey).Err(); err != nil {
		return fmt.Errorf("redis del failed for key %s: %w", stringKey, err)
	}
	c.logger.Debug().Str("key", stringKey).Msg("Presence removed.")
	return nil
}

// Close is a no-op as the client's lifecycle is managed externally.
func (c *RedisPresenceCache[K, V]) Close() error {
	return nil
}
