package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"domainsale/internal/cache"
)

const keyPrefix = "ratelimit:"

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	ResetIn    time.Duration
	RetryAfter time.Duration
}

// Limiter admits at most a fixed number of hits per key in each fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// windowStart aligns t to the start of its window.
func windowStart(t time.Time, window time.Duration) time.Time {
	return t.Truncate(window)
}

func decide(count int64, limit int, now, start time.Time, window time.Duration) Decision {
	resetAt := start.Add(window)
	d := Decision{
		Allowed: count <= int64(limit),
		Limit:   limit,
		ResetAt: resetAt,
		ResetIn: resetAt.Sub(now),
	}
	if remaining := int64(limit) - count; remaining > 0 {
		d.Remaining = int(remaining)
	}
	if !d.Allowed {
		d.RetryAfter = d.ResetIn
	}
	return d
}

type bucket struct {
	start time.Time
	count int64
}

// MemoryLimiter counts hits in process memory. Counters vanish on restart.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[string]*bucket
}

// Ensure limiters implement Limiter
var (
	_ Limiter = (*MemoryLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)

// NewMemoryLimiter creates an in-memory fixed-window limiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return NewMemoryLimiterWithClock(limit, window, time.Now)
}

// NewMemoryLimiterWithClock creates a limiter that reads time from now.
func NewMemoryLimiterWithClock(limit int, window time.Duration, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		buckets: make(map[string]*bucket),
	}
}

// Allow records a hit for key and reports whether it fits in the current window.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	start := windowStart(now, l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || !b.start.Equal(start) {
		if !ok {
			l.sweepLocked(start)
		}
		b = &bucket{start: start}
		l.buckets[key] = b
	}
	b.count++

	return decide(b.count, l.limit, now, start, l.window), nil
}

// sweepLocked drops buckets from previous windows.
func (l *MemoryLimiter) sweepLocked(current time.Time) {
	for key, b := range l.buckets {
		if b.start.Before(current) {
			delete(l.buckets, key)
		}
	}
}

// RedisLimiter keeps counters in Redis so several processes share one budget.
type RedisLimiter struct {
	cache  *cache.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter.
func NewRedisLimiter(cache *cache.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		cache:  cache,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow increments the counter of the current window for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	start := windowStart(now, l.window)
	redisKey := fmt.Sprintf("%s%s:%d", keyPrefix, key, start.Unix())

	count, err := l.cache.IncrWithTTL(ctx, redisKey, l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("count hit: %w", err)
	}
	return decide(count, l.limit, now, start, l.window), nil
}
