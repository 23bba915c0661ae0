package queue

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestRateLimiter_ConsumeUntilEmpty(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newRateLimiter(3, 1, clock.Now)

	for i := 0; i < 3; i++ {
		if !l.ConsumeToken() {
			t.Fatalf("consume %d: expected token available", i)
		}
	}
	if l.ConsumeToken() {
		t.Error("expected empty bucket to deny consume")
	}
	if got := l.Tokens(); got != 0 {
		t.Errorf("expected 0 tokens, got %d", got)
	}
}

func TestRateLimiter_BurstNeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newRateLimiter(5, 2, clock.Now)

	// Consumes spaced under one refill interval apart must never yield
	// more than the initial capacity in total.
	consumed := 0
	for i := 0; i < 20; i++ {
		if l.ConsumeToken() {
			consumed++
		}
		clock.Advance(time.Second)
	}
	if consumed > 5 {
		t.Errorf("consumed %d tokens from a capacity-5 bucket", consumed)
	}
}

func TestRateLimiter_RefillFloorsElapsedMinutes(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newRateLimiter(10, 2, clock.Now)

	for i := 0; i < 10; i++ {
		l.ConsumeToken()
	}

	// 90 seconds at 2 tokens/minute is 3 fractional tokens; only whole
	// tokens are added.
	clock.Advance(90 * time.Second)
	if got := l.Tokens(); got != 3 {
		t.Errorf("expected 3 tokens after 90s at 2/min, got %d", got)
	}
}

func TestRateLimiter_LastRefillOnlyAdvancesOnAdd(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newRateLimiter(10, 1, clock.Now)

	for i := 0; i < 10; i++ {
		l.ConsumeToken()
	}

	// Repeated sub-minute polls must not reset the refill window.
	for i := 0; i < 3; i++ {
		clock.Advance(25 * time.Second)
		l.Refill()
	}
	// 75s elapsed in total, one full minute has passed.
	if got := l.Tokens(); got != 1 {
		t.Errorf("expected 1 token after 75s of sub-minute polling, got %d", got)
	}
}

func TestRateLimiter_ClampsAtCapacity(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newRateLimiter(4, 1, clock.Now)

	// Waiting many refill intervals with no consumption stays clamped.
	clock.Advance(3 * time.Hour)
	l.Refill()
	if got := l.Tokens(); got != 4 {
		t.Errorf("expected tokens clamped at 4, got %d", got)
	}
}
