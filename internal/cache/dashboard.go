package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coffeeshop/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	// DefaultTTL is how long a dashboard snapshot is served before it is recomputed.
	DefaultTTL = time.Minute

	// DefaultPrefix namespaces the cache keys.
	DefaultPrefix = "coffeeshop:analytics:"

	dashboardKey = "dashboard"
)

// DashboardCache is a Redis-backed store for the admin dashboard snapshot.
// Redis failures degrade to cache misses.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger zerolog.Logger
}

// Option customises a DashboardCache.
type Option func(*DashboardCache)

// WithTTL sets the snapshot lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *DashboardCache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the Redis key prefix.
func WithPrefix(prefix string) Option {
	return func(c *DashboardCache) {
		c.prefix = prefix
	}
}

// NewDashboardCache creates a cache on top of an existing Redis client.
func NewDashboardCache(client *redis.Client, logger zerolog.Logger, opts ...Option) *DashboardCache {
	c := &DashboardCache{
		client: client,
		ttl:    DefaultTTL,
		prefix: DefaultPrefix,
		logger: logger.With().Str("component", "dashboard_cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *DashboardCache) key() string {
	return c.prefix + dashboardKey
}

// Get returns the cached snapshot, or false on a miss.
func (c *DashboardCache) Get(ctx context.Context) (*model.DashboardStats, bool) {
	val, err := c.client.Get(ctx, c.key()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("dashboard cache read failed")
		}
		return nil, false
	}

	var stats model.DashboardStats
	if err := json.Unmarshal(val, &stats); err != nil {
		c.logger.Warn().Err(err).Msg("discarding corrupt dashboard snapshot")
		return nil, false
	}

	return &stats, true
}

// Set stores a snapshot for the configured TTL.
func (c *DashboardCache) Set(ctx context.Context, stats *model.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store dashboard snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard snapshot: %w", err)
	}
	return nil
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
