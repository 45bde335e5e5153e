package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window per-IP request limiter backed by Redis
type Limiter struct {
	client      redis.Cmdable
	maxRequests int64
	window      time.Duration
}

func NewLimiter(client redis.Cmdable, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		client:      client,
		maxRequests: int64(maxRequests),
		window:      window,
	}
}

// ipKey generates the Redis key counting requests of one IP for one purpose
func ipKey(purpose, ip string) string {
	return fmt.Sprintf("rate_limit:%s:ip:%s", purpose, ip)
}

// Allow records a request from ip for purpose and reports whether it is
// within the limit for the current window
func (l *Limiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	key := ipKey(purpose, ip)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// Only the first request of a window sets the expiry
	pipe.ExpireNX(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	return incr.Val() <= l.maxRequests, nil
}

// Noop allows everything. Used when rate limiting is disabled.
type Noop struct{}

func (Noop) Allow(context.Context, string, string) (bool, error) { return true, nil }
