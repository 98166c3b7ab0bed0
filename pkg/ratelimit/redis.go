package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments a window counter and arms the expiry only when this
// increment created the key. PTTL is read back in the same script so the
// window start can be derived from one atomic round trip.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RedisStore is a Store backed by a shared Redis instance, giving every
// gateway process the same view of the quota counters.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// IncrWithExpiry implements Store.
func (s *RedisStore) IncrWithExpiry(ctx context.Context, key string, period time.Duration) (uint32, time.Time, error) {
	res, err := incrScript.Run(ctx, s.client, []string{key}, period.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("increment quota counter %s: %w", key, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("increment quota counter %s: unexpected reply length %d", key, len(res))
	}

	count, ttl := res[0], res[1]
	if ttl < 0 {
		// PTTL is negative for keys without expiry. The script arms the
		// expiry on creation, so this only occurs for counters written by
		// other tooling; treat the window as freshly started.
		ttl = period.Milliseconds()
	}

	windowStart := time.Now().Add(time.Duration(ttl)*time.Millisecond - period)
	return uint32(count), windowStart, nil
}
