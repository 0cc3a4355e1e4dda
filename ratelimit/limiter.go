// Package ratelimit provides a Redis-backed fixed-window rate limiter for
// lead capture.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts calls per key in fixed windows. When Redis is unreachable
// the limiter fails open: lead capture is best-effort telemetry and must not
// go down with the counter store.
type Limiter struct {
	rdb    *redis.Client
	window time.Duration
	max    int64
}

// NewLimiter creates a limiter allowing max calls per key per window.
func NewLimiter(rdb *redis.Client, window time.Duration, max int64) *Limiter {
	return &Limiter{
		rdb:    rdb,
		window: window,
		max:    max,
	}
}

// Allow reports whether the caller identified by key is within budget.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))

	count, err := l.rdb.Incr(ctx, bucket).Result()
	if err != nil {
		log.Printf("WARN: rate limiter unavailable, allowing request: %v", err)
		return true
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, bucket, l.window).Err(); err != nil {
			log.Printf("WARN: failed to set rate limit window expiry: %v", err)
		}
	}

	return count <= l.max
}
