// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window request counter backed by Redis.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow counts a request against the key's window and reports whether the
// request is inside the limit.
func (l *Limiter) Allow(ctx context.Context, key string, maxRequests int64, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:api:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiration on first hit
	if count == 1 {
		l.client.Expire(ctx, redisKey, window)
	}

	return count <= maxRequests, nil
}
