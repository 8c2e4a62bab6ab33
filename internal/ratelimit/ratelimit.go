// Package ratelimit provides a token-bucket limiter for outbound provider
// calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token-bucket rate limiter replenishing at a fixed rate.
// A nil *Limiter never blocks.
type Limiter struct {
	rate   float64 // tokens per second
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

// PerMinute creates a Limiter allowing n operations per minute.
func PerMinute(n int) *Limiter {
	return &Limiter{
		rate:   float64(n) / 60,
		tokens: 1,
		last:   time.Now(),
	}
}

// Wait blocks until a token is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	for {
		l.mu.Lock()
		now := time.Now()
		l.tokens += now.Sub(l.last).Seconds() * l.rate
		if l.tokens > 1 {
			l.tokens = 1
		}
		l.last = now

		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
