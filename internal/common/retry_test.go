package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/moodlet/moodlet-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{name: "succeeds first time", failures: 0, attempts: 3, wantCalls: 1},
		{name: "retries retryable errors", failures: 2, err: Retryable(errBoom), attempts: 3, wantCalls: 3},
		{name: "gives up after max attempts", failures: 5, err: Retryable(errBoom), attempts: 3, wantCalls: 3, wantErr: ErrMaxRetries},
		{name: "stops on permanent errors", failures: 5, err: errBoom, attempts: 3, wantCalls: 1, wantErr: errBoom},
		{name: "retries rate limits", failures: 1, err: ErrRateLimit, attempts: 2, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, fastRetry(tt.attempts))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: time.Second}

	calls := 0
	err := WithRetry(ctx, func(context.Context) error {
		calls++
		cancel()
		return Retryable(errors.New("transient"))
	}, opts)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(Retryable(errors.New("x"))))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserError(t *testing.T) {
	err := NewUserError("Session not found", ErrNotFound)
	assert.Equal(t, "Session not found: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	var ue *UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Session not found", ue.UserMessage)

	assert.Equal(t, "bare", NewUserError("bare", nil).Error())

	msg, ok := ClientMessage(fmt.Errorf("saving answers: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "Session not found", msg)

	_, ok = ClientMessage(ErrNotFound)
	assert.False(t, ok)
}
