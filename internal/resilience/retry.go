// Package resilience provides retry with exponential backoff for calls to
// external services, plus an HTTP status error that marks 4xx responses
// as permanent.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// RetryPolicy defines the retry behavior for operations.
type RetryPolicy struct {
	// MaxRetries is the maximum number of retry attempts (not including initial call).
	MaxRetries int `json:"maxRetries"`

	// BaseDelay is the initial delay before the first retry.
	BaseDelay time.Duration `json:"baseDelay"`

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration `json:"maxDelay"`

	// UseJitter adds randomness to delays to prevent thundering herd.
	UseJitter bool `json:"useJitter"`
}

// DefaultHTTPPolicy is used by the integration clients.
func DefaultHTTPPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		UseJitter:  true,
	}
}

// Retry executes fn with the specified retry policy. It stops early on
// success, on context cancellation and on non-retryable errors, and
// returns the error from the last attempt if all retries are exhausted.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error

	maxAttempts := policy.MaxRetries + 1

	for attempt := range maxAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !IsRetryableError(err) {
			return err
		}

		if attempt < maxAttempts-1 {
			delay := CalculateBackoff(attempt, policy.BaseDelay, policy.MaxDelay, policy.UseJitter)
			slog.Debug("retrying after error", "attempt", attempt+1, "delay", delay, "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}

// CalculateBackoff calculates the backoff delay for a given attempt.
// The delay grows exponentially: baseDelay * 2^attempt, capped at maxDelay.
func CalculateBackoff(attempt int, baseDelay, maxDelay time.Duration, useJitter bool) time.Duration {
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	delay := baseDelay
	for range attempt {
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
			break
		}
	}

	// Jitter scales the delay by a random factor in [0.5, 1.5).
	if useJitter {
		jitterFactor := 0.5 + rand.Float64()
		delay = time.Duration(float64(delay) * jitterFactor)
	}

	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}

// IsRetryableError determines if an error should be retried. Context
// errors and client errors (HTTP 4xx other than 408 and 429) are final.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var clientErr isClientError
	if errors.As(err, &clientErr) && clientErr.IsClientError() {
		return false
	}

	var permanent *PermanentError
	return !errors.As(err, &permanent)
}

// isClientError is implemented by errors that describe caller mistakes.
type isClientError interface {
	IsClientError() bool
}

// PermanentError wraps an error that must not be retried.
type PermanentError struct {
	Err error
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }
