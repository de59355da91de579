package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moodlet/moodlet-backend/internal/service"
)

var (
	// ErrRateLimit is returned when the AI provider throttles a request.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is returned once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError flags a provider failure as transient.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as worth retrying.
func Retryable(err error) error {
	return &RetryableError{Err: err, Retryable: true}
}

// backoff yields the wait between attempts, growing by a fixed factor up to
// a ceiling.
type backoff struct {
	next   time.Duration
	max    time.Duration
	factor float64
}

func newBackoff(opts service.RetryOptions) *backoff {
	b := &backoff{next: opts.InitialDelay, max: opts.MaxDelay, factor: opts.Multiplier}
	if b.next <= 0 {
		b.next = 100 * time.Millisecond
	}
	if b.max <= 0 {
		b.max = 30 * time.Second
	}
	if b.factor <= 0 {
		b.factor = 2
	}
	return b
}

// wait returns the delay for the current attempt and advances the schedule.
// Throttled calls jump straight to the ceiling.
func (b *backoff) wait(throttled bool) time.Duration {
	if throttled {
		b.next = b.max
	}
	d := b.next
	b.next = min(time.Duration(float64(b.next)*b.factor), b.max)
	return d
}

// WithRetry runs op until it succeeds, returns a permanent error, exhausts
// opts.MaxAttempts (default 3) or ctx is done.
func WithRetry(ctx context.Context, op func(context.Context) error, opts service.RetryOptions) error {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	schedule := newBackoff(opts)

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempts, err)
		}

		delay := schedule.wait(errors.Is(err, ErrRateLimit))
		slog.Warn("AI request failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether err is transient: a throttle, a deadline or a
// RetryableError flagged as such.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var re *RetryableError
	return errors.As(err, &re) && re.Retryable
}
