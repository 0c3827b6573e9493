package delegate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRetriesExhausted is returned once every attempt was rate limited
var ErrRetriesExhausted = errors.New("failed after multiple retries due to rate limits")

// RetryPolicy bounds how often a rate-limited call is repeated
type RetryPolicy struct {
	MaxAttempts int
	// Backoff returns the pause after the given zero-based attempt failed
	Backoff func(attempt int) time.Duration
	Sleep   func(ctx context.Context, d time.Duration) error
}

// LinearBackoff waits (attempt+1)*unit between attempts
func LinearBackoff(maxAttempts int, unit time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * unit
		},
		Sleep: sleepContext,
	}
}

// DefaultRetryPolicy makes three attempts, pausing 5s then 10s
func DefaultRetryPolicy() RetryPolicy {
	return LinearBackoff(3, 5*time.Second)
}

// Do calls fn until it succeeds, fails with something other than a rate
// limit, or runs out of attempts. Backoff only pauses between attempts: after
// the last rate-limited attempt Do returns ErrRetriesExhausted without
// sleeping.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRateLimited(err) {
			return err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		if p.Backoff != nil {
			if err := sleep(ctx, p.Backoff(attempt)); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

// IsRateLimited reports whether err looks like a rate-limit rejection
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
