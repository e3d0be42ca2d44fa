package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(window time.Duration, max int) (*Limiter, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(window, max)
	l.now = c.now
	return l, c
}

func TestLimiter_Allow(t *testing.T) {
	l, c := newTestLimiter(time.Second, 3)

	for i := range 3 {
		assert.True(t, l.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "keys are independent")

	c.t = c.t.Add(1100 * time.Millisecond)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestLimiter_Remaining(t *testing.T) {
	l, _ := newTestLimiter(time.Second, 5)

	assert.Equal(t, 5, l.Remaining("k"))
	l.Allow("k")
	l.Allow("k")
	assert.Equal(t, 3, l.Remaining("k"))
}

func TestLimiter_RetryAfter(t *testing.T) {
	l, c := newTestLimiter(time.Hour, 1)

	assert.Zero(t, l.RetryAfter("k"))
	l.Allow("k")
	c.t = c.t.Add(20 * time.Minute)
	assert.Equal(t, 40*time.Minute, l.RetryAfter("k"))
}

func TestLimiter_Cleanup(t *testing.T) {
	l, c := newTestLimiter(time.Second, 1)
	l.Allow("k")
	c.t = c.t.Add(2 * time.Second)
	l.cleanup()
	assert.Empty(t, l.counters)
}

func TestLimiter_RunStops(t *testing.T) {
	l := NewLimiter(time.Second, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	assert.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
