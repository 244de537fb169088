package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb, err := NewRedisClient(context.Background(), addr, os.Getenv("REDIS_USERNAME"), os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// holdLock takes name on l and keeps it until release is closed.
func holdLock(t *testing.T, l Locker, name string) (release chan struct{}, done chan error) {
	t.Helper()

	acquired := make(chan struct{})
	release = make(chan struct{})
	done = make(chan error, 1)
	go func() {
		done <- l.WithLock(context.Background(), name, func(ctx context.Context) error {
			close(acquired)
			<-release
			return nil
		})
	}()

	select {
	case <-acquired:
	case err := <-done:
		t.Fatalf("lock not taken: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out taking lock")
	}
	return release, done
}

func TestRedisLockerContention(t *testing.T) {
	rdb := newTestRedis(t)
	l := NewRedisSlotLocker(rdb, 5*time.Second, 150*time.Millisecond)
	name := "test-" + uuid.NewString()

	release, done := holdLock(t, l, name)

	start := time.Now()
	err := l.WithLock(context.Background(), name, func(ctx context.Context) error {
		t.Error("critical section ran while the lock was held")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond, "retries until the wait elapses")

	close(release)
	require.NoError(t, <-done)

	ran := false
	require.NoError(t, l.WithLock(context.Background(), name, func(ctx context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)

	exists, err := rdb.Exists(context.Background(), "lock:"+name).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "lock key removed after release")
}

func TestRedisLockerWaitsForRelease(t *testing.T) {
	rdb := newTestRedis(t)
	l := NewRedisSlotLocker(rdb, 5*time.Second, 2*time.Second)
	name := "test-" + uuid.NewString()

	release, done := holdLock(t, l, name)
	time.AfterFunc(100*time.Millisecond, func() { close(release) })

	err := l.WithLock(context.Background(), name, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestRedisLockerReleaseChecksToken(t *testing.T) {
	rdb := newTestRedis(t)
	l := NewRedisSlotLocker(rdb, 5*time.Second, time.Second).(*redisSlotLocker)
	ctx := context.Background()
	key := "lock:test-" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	require.NoError(t, l.acquire(ctx, key, "owner"))
	require.NoError(t, l.release(ctx, key, "someone-else"))

	val, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "owner", val)

	require.NoError(t, l.release(ctx, key, "owner"))
	_, err = rdb.Get(ctx, key).Result()
	assert.ErrorIs(t, err, redis.Nil)
}
