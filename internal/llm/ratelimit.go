package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errLimiterClosed = errors.New("rate limiter closed")

// rateLimiter is a token bucket shared by every provider call an Advisor
// makes. Tokens are credited lazily from the elapsed time on each access.
type rateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perToken time.Duration
	last     time.Time
	closed   bool
	now      func() time.Time
}

// newRateLimiter allows requestsPerMinute calls, bursting up to the same
// number. Non-positive values fall back to 60.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	rl := &rateLimiter{
		tokens:   float64(requestsPerMinute),
		capacity: float64(requestsPerMinute),
		perToken: time.Minute / time.Duration(requestsPerMinute),
		now:      time.Now,
	}
	rl.last = rl.now()
	return rl
}

// credit adds the tokens earned since the last access. Callers hold mu.
func (rl *rateLimiter) credit() {
	now := rl.now()
	if elapsed := now.Sub(rl.last); elapsed > 0 {
		rl.tokens = min(rl.capacity, rl.tokens+float64(elapsed)/float64(rl.perToken))
	}
	rl.last = now
}

// reserve takes a token when one is ready, otherwise it reports how long
// until the next one.
func (rl *rateLimiter) reserve() (time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return 0, errLimiterClosed
	}
	rl.credit()
	if rl.tokens >= 1 {
		rl.tokens--
		return 0, nil
	}
	missing := 1 - rl.tokens
	return time.Duration(missing * float64(rl.perToken)), nil
}

// wait blocks until a token is taken, ctx is done or the limiter is closed.
func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		delay, err := rl.reserve()
		if err != nil || delay == 0 {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// Close makes later waits fail. Safe to call more than once.
func (rl *rateLimiter) Close() {
	rl.mu.Lock()
	rl.closed = true
	rl.mu.Unlock()
}
