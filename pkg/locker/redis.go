package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// RedisOptions configures the distributed locker.
type RedisOptions struct {
	// Timeout bounds how long Lock waits for a held key.
	Timeout time.Duration
	// Expiry is how long a lock survives a crashed holder.
	Expiry time.Duration
	// RetryDelay is the pause between acquisition attempts.
	RetryDelay time.Duration
	// Prefix namespaces lock keys in Redis.
	Prefix string
}

// DefaultRedisOptions returns defaults suited to short ledger commits.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Timeout:    5 * time.Second,
		Expiry:     10 * time.Second,
		RetryDelay: 50 * time.Millisecond,
		Prefix:     "ledger:lock:",
	}
}

// Redis is a distributed Locker built on redsync, for deployments running
// more than one instance against the same ledger.
type Redis struct {
	rs   *redsync.Redsync
	opts RedisOptions
}

var _ Locker = (*Redis)(nil)

// NewRedis creates a Redis locker over an existing client.
func NewRedis(client goredislib.UniversalClient, opts RedisOptions) *Redis {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRedisOptions().RetryDelay
	}
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultRedisOptions().Expiry
	}
	return &Redis{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}
}

// Lock acquires key, retrying until the timeout. A Timeout <= 0 retries
// until ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	lockCtx := ctx
	tries := math.MaxInt32
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
		tries = int(r.opts.Timeout/r.opts.RetryDelay) + 1
	}

	mutex := r.rs.NewMutex(
		r.opts.Prefix+key,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(lockCtx); err != nil {
		if errors.Is(err, redsync.ErrFailed) || lockCtx.Err() != nil || strings.Contains(err.Error(), "lock already taken") {
			return nil, fmt.Errorf("%w: key %s: %v", ErrLockTimeout, key, err)
		}
		return nil, fmt.Errorf("failed to acquire lock for %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), r.opts.Expiry)
			defer cancel()
			if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
				slog.Warn("failed to release distributed lock", "key", key, "error", err)
			}
		})
	}, nil
}
