package utils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Backoff returns how long to wait after the given failed attempt (1-based).
type Backoff func(attempt uint) time.Duration

// LinearBackoff waits base, 2*base, 3*base, ... between attempts.
func LinearBackoff(base time.Duration) Backoff {
	return func(attempt uint) time.Duration {
		return time.Duration(attempt) * base
	}
}

// ConstantBackoff waits d between attempts.
func ConstantBackoff(d time.Duration) Backoff {
	return func(uint) time.Duration {
		return d
	}
}

// Retry calls fn until it succeeds, returns an error retryable rejects, or
// maxRetries attempts have been made. A nil retryable retries every error.
func Retry[T any](
	ctx context.Context,
	name string,
	maxRetries uint,
	backoff Backoff,
	retryable func(error) bool,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	if maxRetries == 0 {
		maxRetries = 1
	}

	var err error
	for attempt := uint(1); attempt <= maxRetries; attempt++ {
		var result T
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if retryable != nil && !retryable(err) {
			return zero, err
		}
		if attempt == maxRetries {
			break
		}

		slog.Debug("Retrying call", "name", name, "attempt", attempt, "error", err)
		if err := sleep(ctx, backoff(attempt)); err != nil {
			return zero, err
		}
	}

	return zero, errors.WithMessage(err, fmt.Sprintf("failed after %d retries", maxRetries))
}

func sleep(ctx context.Context, d time.Duration) error {
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
