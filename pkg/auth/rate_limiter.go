package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter limits requests per key over a time window
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// SlidingWindowLimiter is an in-process sliding window rate limiter. State is
// per-container; the DynamoDB-backed limiter covers the multi-invocation case.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
	}
}

// Allow checks if a request is allowed
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.windowSize)

	valid := l.windows[key][:0]
	for _, t := range l.windows[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= l.limit {
		l.windows[key] = valid
		return false, nil
	}

	l.windows[key] = append(valid, now)
	return true, nil
}

// IPRateLimiter wraps a rate limiter for IP-based limiting
type IPRateLimiter struct {
	limiter RateLimiter
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	return &IPRateLimiter{limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute)}
}

// Allow checks if a request from an IP is allowed
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, fmt.Sprintf("ip:%s", ip))
}

// PlayerRateLimiter wraps a rate limiter for per-player limiting
type PlayerRateLimiter struct {
	limiter RateLimiter
}

// NewPlayerRateLimiter creates a new player-based rate limiter
func NewPlayerRateLimiter(requestsPerMinute int) *PlayerRateLimiter {
	return &PlayerRateLimiter{limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute)}
}

// Allow checks if a request from a player is allowed
func (l *PlayerRateLimiter) Allow(ctx context.Context, playerID string) (bool, error) {
	return l.limiter.Allow(ctx, fmt.Sprintf("player:%s", playerID))
}
