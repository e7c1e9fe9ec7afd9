package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is an in-process limiter that allows bursts up to capacity and
// refills at rate tokens per second. Each instance of the function app keeps
// its own bucket.
type TokenBucket struct {
	rate       float64
	capacity   float64
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
	mutex      sync.Mutex
}

// NewTokenBucket creates a full TokenBucket.
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return newTokenBucket(rate, capacity, time.Now)
}

func newTokenBucket(rate float64, capacity int, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		lastRefill: now(),
		now:        now,
	}
}

// Allow consumes one token if available. It never returns an error.
func (tb *TokenBucket) Allow(context.Context) (bool, error) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.lastRefill); elapsed > 0 {
		tb.tokens += elapsed.Seconds() * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens < 1 {
		return false, nil
	}
	tb.tokens--
	return true, nil
}
