// Package ratelimit implements the sliding-window rate limiter: a sorted
// set per (identifier, endpoint) in the shared cache, pruned and counted
// atomically with each admission decision.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result is the admission decision for one check.
type Result struct {
	Allowed      bool
	CurrentCount int64
	RetryAfter   time.Duration
}

// luaSlidingWindow implements steps 1-4 of spec.md §4.5 as a single
// atomic pipeline: prune expired members, count what remains, and admit
// or reject in one round trip so no other request can race between the
// count and the add.
//
// KEYS[1] = rate limit key
// ARGV[1] = now (unix nanoseconds)
// ARGV[2] = window (nanoseconds)
// ARGV[3] = limit
// ARGV[4] = new member value (unique per request)
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, member)
    redis.call('PEXPIRE', key, math.ceil(window / 1e6))
    return {1, count + 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] ~= nil then
    oldestScore = tonumber(oldest[2])
end
return {0, count, oldestScore}
`

// Limiter checks and admits requests against the sliding window.
type Limiter struct {
	client    *redis.Client
	keyPrefix string
	logger    *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(lim *Limiter) { lim.logger = l }
}

// WithKeyPrefix overrides the default "rate_limit:" cache key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(lim *Limiter) { lim.keyPrefix = prefix }
}

// New builds a Limiter backed by the given Redis client.
func New(client *redis.Client, opts ...Option) *Limiter {
	l := &Limiter{client: client, keyPrefix: "rate_limit:", logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check evaluates identifier+endpoint against limit over window. On cache
// unavailability it fails open (admits the request) and logs a warning,
// per spec.md §4.5's explicit availability-over-enforcement policy.
func (l *Limiter) Check(ctx context.Context, identifier, endpoint string, limit int, window time.Duration) (Result, error) {
	key := fmt.Sprintf("%s%s:%s", l.keyPrefix, identifier, endpoint)
	now := time.Now()
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	res, err := l.client.Eval(ctx, luaSlidingWindow, []string{key},
		now.UnixNano(), window.Nanoseconds(), limit, member).Slice()
	if err != nil {
		l.logger.Warn("rate limiter cache unavailable, failing open", "identifier", identifier, "endpoint", endpoint, "error", err)
		return Result{Allowed: true}, nil
	}

	allowed, _ := toInt64(res[0])
	count, _ := toInt64(res[1])
	oldestScore, _ := toInt64(res[2])

	result := Result{Allowed: allowed == 1, CurrentCount: count}
	if !result.Allowed {
		elapsed := time.Duration(now.UnixNano()-oldestScore) * time.Nanosecond
		retryAfter := window - elapsed
		if retryAfter < 0 {
			retryAfter = 0
		}
		result.RetryAfter = retryAfter
	}
	return result, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	default:
		return 0, false
	}
}
