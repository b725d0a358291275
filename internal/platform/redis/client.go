// Package redis owns the shared Redis connection the token revocation list
// runs on. Revocation is optional; a deployment without CONCORD_REDIS_URL
// simply skips the revocation check in the auth middleware.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"concord/internal/platform/config"
)

// Client wraps the go-redis client so the transport layer can probe it for
// readiness without knowing redis types.
type Client struct {
	*redis.Client
}

// New dials Redis from the revocation-list configuration and verifies the
// connection with a ping. Returns (nil, nil) when no URL is configured, which
// callers treat as revocation disabled.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports connection liveness for the /healthz readiness probe. A
// failing check degrades health; it does not fail open the revocation gate.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
