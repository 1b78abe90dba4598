// Package locker provides the per-account critical section used by the coordinator.
package locker

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when a lock could not be acquired in time.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Locker serializes work per key. Different keys never block each other.
type Locker interface {
	// Lock blocks until key is held, the lock timeout elapses, or ctx is done.
	// The returned function releases the lock and is safe to call more than once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
