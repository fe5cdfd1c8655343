// Package cache keeps computed statistics in Redis between writes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alarm-clock-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const prefixStats = "stats:"

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStatsCache stores statistics per scope as JSON with a TTL.
// Any Redis failure is logged and reported as a miss.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache connects to Redis and verifies the connection
func NewRedisStatsCache(ctx context.Context, cfg Config) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	c := NewRedisStatsCacheFromClient(client, cfg.TTL)
	if err := c.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return c, nil
}

// NewRedisStatsCacheFromClient wraps an existing client
func NewRedisStatsCacheFromClient(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Key returns the Redis key statistics of scope are stored under
func Key(scope models.Scope) string {
	return prefixStats + scope.String()
}

// Get returns cached statistics of scope
func (c *RedisStatsCache) Get(ctx context.Context, scope models.Scope) (*models.Stats, bool) {
	data, err := c.client.Get(ctx, Key(scope)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("scope", scope.String()).Msg("Stats cache read failed")
		}
		return nil, false
	}

	var stats models.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.Warn().Err(err).Str("scope", scope.String()).Msg("Stats cache entry corrupt")
		return nil, false
	}
	return &stats, true
}

// Set caches statistics of scope
func (c *RedisStatsCache) Set(ctx context.Context, scope models.Scope, stats models.Stats) {
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, Key(scope), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("scope", scope.String()).Msg("Stats cache write failed")
	}
}

// Invalidate drops cached statistics of scope
func (c *RedisStatsCache) Invalidate(ctx context.Context, scope models.Scope) {
	if err := c.client.Del(ctx, Key(scope)).Err(); err != nil {
		log.Warn().Err(err).Str("scope", scope.String()).Msg("Stats cache invalidation failed")
	}
}

// Ping checks if Redis is reachable
func (c *RedisStatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}
