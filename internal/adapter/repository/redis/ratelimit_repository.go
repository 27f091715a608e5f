package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository implements a fixed-window request counter on Redis.
// The window matches the classic express-style limiter the frontend was
// built against: N requests per window per client, shared across API
// replicas.
type RateLimitRepository struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewRateLimitRepository creates a Redis-backed rate limiter allowing up to
// max requests per window per key.
func NewRateLimitRepository(client *redis.Client, max int, window time.Duration) *RateLimitRepository {
	return &RateLimitRepository{
		client: client,
		max:    max,
		window: window,
	}
}

// Allow increments the client's counter for the current window and reports
// whether it is still within the limit. The key expires with the window, so
// stale clients cost nothing.
func (r *RateLimitRepository) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, fmt.Errorf("set rate limit window: %w", err)
		}
	}

	return count <= int64(r.max), nil
}
