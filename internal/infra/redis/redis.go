// Package redis provides the shared-cache client: key/value storage with
// TTL, counters, sorted sets, and atomic pipelines, backing the rate
// limiter, token/user/session caches, and the revocation set.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the settings needed to dial the shared cache. It is
// decoupled from internal/infra/config so this package stays testable in
// isolation; callers populate it from Config's Redis* fields.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 5
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	return c
}

// Client wraps the Redis client with connection pooling.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client with the given configuration and
// verifies connectivity with a bounded ping.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClientFromRedisClient wraps an already-constructed *redis.Client,
// used by tests to plug in a miniredis-backed client.
func NewClientFromRedisClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis client connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is available.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Client returns the underlying redis.Client for direct access by
// components that need pipelines or sorted-set commands.
func (c *Client) Client() *redis.Client {
	return c.rdb
}
