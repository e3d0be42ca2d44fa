package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter implements a simple in-memory fixed window rate limiter keyed by caller.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter
	window   time.Duration
	max      int
	now      func() time.Time
}

type counter struct {
	count     int
	expiresAt time.Time
}

// NewLimiter creates a limiter allowing max requests per key within window.
func NewLimiter(window time.Duration, max int) *Limiter {
	return &Limiter{
		counters: make(map[string]*counter),
		window:   window,
		max:      max,
		now:      time.Now,
	}
}

// Allow checks if a request for the given key is allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, exists := l.counters[key]

	if !exists || now.After(c.expiresAt) {
		l.counters[key] = &counter{
			count:     1,
			expiresAt: now.Add(l.window),
		}
		return true
	}

	if c.count >= l.max {
		return false
	}

	c.count++
	return true
}

// Remaining returns the number of requests left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.counters[key]
	if !exists || l.now().After(c.expiresAt) {
		return l.max
	}
	return max(l.max-c.count, 0)
}

// RetryAfter returns how long key has to wait for its window to reset, zero when it may proceed.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.counters[key]
	if !exists || c.count < l.max {
		return 0
	}
	return max(c.expiresAt.Sub(l.now()), 0)
}

// Run removes expired counters every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, c := range l.counters {
		if now.After(c.expiresAt) {
			delete(l.counters, key)
		}
	}
}
