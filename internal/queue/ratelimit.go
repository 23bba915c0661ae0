package queue

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket bounding how often capture tasks may
// start. Refill happens lazily on every consume attempt and on the
// queue's periodic tick: floor(elapsedMinutes * refillRate) tokens are
// added, clamped to the bucket capacity. lastRefill only advances when
// tokens were actually added, so sub-minute calls do not drift the
// refill window.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate float64 // tokens per minute
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a full bucket with the given capacity and
// per-minute refill rate.
func NewRateLimiter(maxTokens int, refillRate float64) *RateLimiter {
	return newRateLimiter(maxTokens, refillRate, time.Now)
}

func newRateLimiter(maxTokens int, refillRate float64, now func() time.Time) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillRate <= 0 {
		refillRate = 1
	}
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// ConsumeToken takes one token if available. Returns false without side
// effects when the bucket is empty. Tokens never go negative and there
// is no borrowing.
func (l *RateLimiter) ConsumeToken() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked()
	if l.tokens > 0 {
		l.tokens--
		return true
	}
	return false
}

// Refill applies any pending lazy refill. Called by the queue's
// periodic tick.
func (l *RateLimiter) Refill() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked()
}

// Tokens reports the current token count after applying pending refill.
func (l *RateLimiter) Tokens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked()
	return l.tokens
}

func (l *RateLimiter) refillLocked() {
	now := l.now()
	elapsedMinutes := now.Sub(l.lastRefill).Minutes()
	tokensToAdd := int(elapsedMinutes * l.refillRate)

	if tokensToAdd > 0 {
		l.tokens += tokensToAdd
		if l.tokens > l.maxTokens {
			l.tokens = l.maxTokens
		}
		l.lastRefill = now
	}
}
