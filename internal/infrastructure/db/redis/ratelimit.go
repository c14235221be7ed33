package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts requests per key within non-overlapping fixed
// time windows. Counters live in Redis so they are shared across replicas
// and reset at each window boundary via key expiry.
// Key format: ratelimit:<key>:<window_start_unix>
type FixedWindowLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per key
// per window.
func NewFixedWindowLimiter(client *redis.Client, limit int, window time.Duration) *FixedWindowLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow increments the counter for key's current window and reports whether
// the request is within the ceiling. Each window boundary starts a fresh
// counter.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowStart := l.now().Truncate(l.window).Unix()
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	return count.Val() <= l.limit, nil
}
