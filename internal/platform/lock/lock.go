// Package lock serializes read-modify-write cycles on a shared collection.
//
// Within one process every collection already holds its own mutex, so Nop is
// enough. When several processes share a data directory, Redis provides a
// per-collection lease instead.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"rpscreen/pkg/platform/sentinel"
)

// Release gives a held lock back.
type Release func(ctx context.Context) error

// Locker obtains an exclusive lock on key.
type Locker interface {
	Obtain(ctx context.Context, key string) (Release, error)
	// Shared reports whether other processes may hold the same keys, in which
	// case callers must reload state after obtaining the lock.
	Shared() bool
}

// Nop is the single-process locker.
type Nop struct{}

func (Nop) Obtain(context.Context, string) (Release, error) {
	return func(context.Context) error { return nil }, nil
}

func (Nop) Shared() bool { return false }

// Redis leases keys through bsm/redislock.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	prefix string
	retry  redislock.RetryStrategy
}

// NewRedis builds a Redis-backed locker. Leases expire after ttl so a crashed
// holder cannot wedge a collection; waiters give up after half a lease.
func NewRedis(client redislock.RedisClient, ttl time.Duration) *Redis {
	return &Redis{
		client: redislock.New(client),
		ttl:    ttl,
		prefix: "rpscreen:lock:",
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(ttl/(100*time.Millisecond))),
	}
}

func (r *Redis) Obtain(ctx context.Context, key string) (Release, error) {
	l, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, &redislock.Options{RetryStrategy: r.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock %s busy: %w", key, sentinel.ErrUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := l.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

func (r *Redis) Shared() bool { return true }
