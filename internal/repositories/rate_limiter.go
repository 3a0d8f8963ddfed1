package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts attempts per key in a sliding window.
type RateLimiter interface {
	// Allow records an attempt and reports whether it is within the limit,
	// how many attempts are left and, when refused, how long to wait.
	Allow(ctx context.Context, key string) (bool, int, time.Duration, error)
}

type rateLimiter struct {
	client      *redis.Client
	prefix      string
	maxAttempts int64
	window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(client *redis.Client, prefix string, maxAttempts int, window time.Duration) RateLimiter {
	return NewRateLimiterWithClock(client, prefix, maxAttempts, window, time.Now)
}

func NewRateLimiterWithClock(client *redis.Client, prefix string, maxAttempts int, window time.Duration, now func() time.Time) RateLimiter {
	return &rateLimiter{client: client, prefix: prefix, maxAttempts: int64(maxAttempts), window: window, now: now}
}

func (r *rateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Duration, error) {

	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)

	now := r.now().UnixNano()

	// only attempts after this point count
	windowStart := now - r.window.Nanoseconds()

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: now})
	count := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, fmt.Errorf("rate limit pipeline failed: %w", err)
	}

	attempts := count.Val()

	if attempts <= r.maxAttempts {
		return true, int(r.maxAttempts - attempts), 0, nil
	}

	oldest, err := r.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("failed to read oldest attempt: %w", err)
	}

	retryAfter := r.window
	if len(oldest) > 0 {
		retryAfter = time.Duration(int64(oldest[0].Score) + r.window.Nanoseconds() - now)
	}

	return false, 0, max(retryAfter, 0), nil
}
