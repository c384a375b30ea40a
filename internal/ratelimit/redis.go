package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "contact:ratelimit:"

// incrementScript counts a request and opens the window on the first one.
// Returns {count, pttl}.
var incrementScript = goredis.NewScript(`
local c = redis.call('INCR', KEYS[1])
if c == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {c, redis.call('PTTL', KEYS[1])}
`)

// RedisStore shares counters between instances. Each identifier is one key whose
// TTL is the remaining window, so Redis expiry does the sweeping.
type RedisStore struct {
	rdb    goredis.UniversalClient
	window time.Duration
	prefix string
	now    Clock
}

func NewRedisStore(rdb goredis.UniversalClient, window time.Duration, clock Clock) *RedisStore {
	if clock == nil {
		clock = time.Now
	}
	return &RedisStore{
		rdb:    rdb,
		window: window,
		prefix: defaultKeyPrefix,
		now:    clock,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	pipe := s.rdb.Pipeline()
	countCmd := pipe.Get(ctx, s.key(key))
	ttlCmd := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return Record{}, false, fmt.Errorf("failed to read rate limit record: %w", err)
	}

	count, err := countCmd.Int()
	if errors.Is(err, goredis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to parse rate limit count: %w", err)
	}

	return Record{Count: count, WindowStart: s.windowStart(ttlCmd.Val())}, true, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string) (Record, error) {
	res, err := incrementScript.Run(ctx, s.rdb, []string{s.key(key)}, s.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Record{}, fmt.Errorf("failed to increment rate limit record: %w", err)
	}
	if len(res) != 2 {
		return Record{}, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}

	return Record{
		Count:       int(res[0]),
		WindowStart: s.windowStart(time.Duration(res[1]) * time.Millisecond),
	}, nil
}

// Sweep is a no-op: keys expire with their window.
func (s *RedisStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

func (s *RedisStore) windowStart(ttl time.Duration) time.Time {
	if ttl < 0 {
		ttl = 0
	}
	return s.now().Add(ttl - s.window)
}
