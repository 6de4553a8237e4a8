// Package redis connects the optional Redis instance that lets several
// screening processes share one data directory. Redis holds no screening
// data; it only leases the per-collection locks.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"rpscreen/internal/platform/config"
	"rpscreen/internal/platform/lock"
	"rpscreen/pkg/platform/sentinel"
)

const defaultDialTimeout = 5 * time.Second

// Client is a connected Redis lock backend.
type Client struct {
	*goredis.Client
	lockTTL time.Duration
}

// New connects to cfg.URL and pings it within cfg.DialTimeout. It returns a
// nil Client and no error when no URL is configured, in which case writes are
// serialized only within this process.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	c := &Client{Client: goredis.NewClient(opts), lockTTL: cfg.LockTTL}
	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := c.Health(pingCtx); err != nil {
		_ = c.Client.Close()
		return nil, err
	}
	return c, nil
}

// Locker leases collection locks on this connection for the configured TTL.
func (c *Client) Locker() *lock.Redis {
	return lock.NewRedis(c.Client, c.lockTTL)
}

// Health reports sentinel.ErrUnavailable when Redis does not answer a ping.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
