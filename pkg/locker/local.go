package locker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Local is an in-process keyed mutex. Each key gets a one-slot channel so that
// waiting can be bounded with select. Entries are refcounted and removed once
// nobody holds or waits for them.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
}

var _ Locker = (*Local)(nil)

// NewLocal creates a Local locker. A timeout <= 0 waits until ctx is done.
func NewLocal(timeout time.Duration) *Local {
	return &Local{
		entries: make(map[string]*entry),
		timeout: timeout,
	}
}

func (l *Local) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) releaseEntry(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Lock acquires key.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireEntry(key)

	var expired <-chan time.Time
	if l.timeout > 0 {
		timer := time.NewTimer(l.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case e.sem <- struct{}{}:
	case <-expired:
		l.releaseEntry(key, e)
		return nil, fmt.Errorf("%w: key %s after %s", ErrLockTimeout, key, l.timeout)
	case <-ctx.Done():
		l.releaseEntry(key, e)
		return nil, fmt.Errorf("%w: key %s: %w", ErrLockTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.releaseEntry(key, e)
		})
	}, nil
}

// size reports the number of live keys.
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
