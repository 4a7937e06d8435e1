package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// FixedWindowLimiter implements a fixed-window rate limiter using Redis:
// INCR key; if count == 1 then EXPIRE key window.
// key should already include identity + route.
type FixedWindowLimiter struct {
	rdb *goredis.Client
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	if c == nil {
		return &FixedWindowLimiter{rdb: nil}
	}
	return &FixedWindowLimiter{rdb: c.rdb}
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 0 if allowed
	Count      int
}

// AllowFixedWindow returns whether a request is allowed for key+window.
// Redis disabled => allow (fail-open).
func (l *FixedWindowLimiter) AllowFixedWindow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if l.rdb == nil {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}

	// Lua to ensure atomic INCR + set expire on first hit.
	// returns: {count, ttl_ms}
	const lua = `
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`
	res, err := l.rdb.Eval(ctx, lua, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		// fail-open on limiter errors
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, err
	}

	vals, ok := res.([]any)
	if !ok || len(vals) != 2 {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	count, _ := vals[0].(int64)
	ttlms, _ := vals[1].(int64)
	if ttlms < 0 {
		ttlms = window.Milliseconds()
	}

	d := Decision{
		Limit: limit,
		Count: int(count),
	}
	if int(count) <= limit {
		d.Allowed = true
		d.Remaining = limit - int(count)
	} else {
		d.RetryAfter = time.Duration(ttlms) * time.Millisecond
	}
	return d, nil
}
