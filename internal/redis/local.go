package redisclient

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// LocalLocker serializes critical sections within a single process. It is
// the default when no Redis is configured.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*semaphore.Weighted)}
}

func (l *LocalLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	sem := l.get(name)
	if err := sem.Acquire(ctx, 1); err != nil {
		return ErrLockNotAcquired
	}
	defer sem.Release(1)

	return fn(ctx)
}

func (l *LocalLocker) get(name string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.locks[name]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[name] = sem
	}
	return sem
}
