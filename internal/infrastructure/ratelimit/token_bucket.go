// Package ratelimit provides login throttling backed by Redis with an in-process fallback.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm for rate limiting.
// It is safe for concurrent use.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64   // Maximum number of tokens
	tokens     float64   // Current number of tokens
	rate       float64   // Tokens added per second
	lastRefill time.Time // Last time tokens were refilled
	now        func() time.Time
}

// NewTokenBucket creates a full bucket holding capacity tokens, refilled at rate tokens per second.
func NewTokenBucket(capacity, rate float64, now func() time.Time) *TokenBucket {
	if now == nil {
		now = time.Now
	}
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		rate:       rate,
		lastRefill: now(),
		now:        now,
	}
}

// Take consumes one token if available. It returns whether the token was granted,
// the whole tokens left and how long until the bucket is full again.
func (tb *TokenBucket) Take() (bool, int, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	allowed := false
	if tb.tokens >= 1 {
		tb.tokens--
		allowed = true
	}
	return allowed, int(math.Floor(tb.tokens)), tb.untilFull()
}

// Available returns the current number of tokens available.
func (tb *TokenBucket) Available() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// refill must be called with the lock held.
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.tokens = math.Min(tb.tokens+elapsed*tb.rate, tb.capacity)
	}
	tb.lastRefill = now
}

func (tb *TokenBucket) untilFull() time.Duration {
	if tb.tokens >= tb.capacity || tb.rate <= 0 {
		return 0
	}
	return time.Duration((tb.capacity - tb.tokens) / tb.rate * float64(time.Second))
}
