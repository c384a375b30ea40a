package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/miravision/website/internal/logging"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiterBlocksSixteenthRequest(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewLimiter(NewMemoryStore(time.Hour, clock.Now), 15)

	for i := 1; i <= 15; i++ {
		ok, rec, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok, "request %d should be allowed", i)
		assert.Equal(t, i, rec.Count)
		clock.Advance(time.Minute)
	}

	ok, _, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "16th request in the window must be rejected")

	// Other identifiers are independent.
	ok, _, err = limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiterWindowResets(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewLimiter(NewMemoryStore(time.Hour, clock.Now), 15)

	for i := 0; i < 16; i++ {
		limiter.Allow(ctx, "unknown")
	}

	// Exactly at the boundary the window is still active.
	clock.Advance(time.Hour)
	ok, _, err := limiter.Allow(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(time.Millisecond)
	ok, rec, err := limiter.Allow(ctx, "unknown")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, clock.Now(), rec.WindowStart)
}

func TestLimiterRemaining(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(time.Hour, nil), 15)
	assert.Equal(t, 15, limiter.Max())
	assert.Equal(t, 14, limiter.Remaining(Record{Count: 1}))
	assert.Equal(t, 0, limiter.Remaining(Record{Count: 15}))
	assert.Equal(t, 0, limiter.Remaining(Record{Count: 20}))
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStore(time.Hour, clock.Now)

	store.Increment(ctx, "old")
	clock.Advance(30 * time.Minute)
	store.Increment(ctx, "fresh")
	clock.Advance(31 * time.Minute)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, _ := store.Get(ctx, "old")
	assert.False(t, ok)
	rec, ok, _ := store.Get(ctx, "fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Count)
}

func TestMemoryStoreConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Increment(ctx, "burst")
		}()
	}
	wg.Wait()

	rec, ok, err := store.Get(ctx, "burst")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, rec.Count)
}

func TestSweeperStartStop(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStore(time.Hour, clock.Now)

	for i := 0; i < 5; i++ {
		store.Increment(ctx, fmt.Sprintf("client-%d", i))
	}
	clock.Advance(2 * time.Hour)

	sweeper := NewSweeper(store, 5*time.Millisecond, logging.Discard())
	sweeper.Start(ctx)
	sweeper.Start(ctx) // second start is a no-op

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	sweeper.Stop()
	sweeper.Stop()

	// Stopped sweepers leave new records alone.
	store.Increment(ctx, "late")
	clock.Advance(2 * time.Hour)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, store.Len())
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisStoreLimitsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	// Two limiters sharing one Redis behave like one global limit.
	a := NewLimiter(NewRedisStore(rdb, time.Hour, nil), 15)
	b := NewLimiter(NewRedisStore(rdb, time.Hour, nil), 15)

	for i := 1; i <= 15; i++ {
		limiter := a
		if i%2 == 0 {
			limiter = b
		}
		ok, rec, err := limiter.Allow(ctx, "9.9.9.9")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, i, rec.Count)
	}

	ok, _, err := b.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Hour + time.Millisecond)

	ok, rec, err := a.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Count)
}

func TestRedisStoreGet(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	clock := newFakeClock()
	store := NewRedisStore(rdb, time.Hour, clock.Now)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Increment(ctx, "present")
	require.NoError(t, err)
	_, err = store.Increment(ctx, "present")
	require.NoError(t, err)

	rec, ok, err := store.Get(ctx, "present")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, rec.Count)
	assert.WithinDuration(t, clock.Now(), rec.WindowStart, time.Second)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
