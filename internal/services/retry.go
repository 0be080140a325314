package services

import (
	"context"
	"log/slog"
	"time"

	"monev/internal/storage"
)

// RetryPolicy bounds how often a transient store failure is retried.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// DefaultRetryPolicy is 3 attempts, 50ms doubling up to 1s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Base: 50 * time.Millisecond, Max: time.Second}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	if attempt > 30 {
		return p.Max
	}
	d := p.Base << attempt
	if d <= 0 || d > p.Max {
		return p.Max
	}
	return d
}

// withRetry runs fn until it succeeds, fails permanently, or the attempts run out.
func withRetry[T any](ctx context.Context, p RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		result T
		err    error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = fn(ctx)
		if err == nil || !storage.IsTransient(err) {
			return result, err
		}
		if attempt == attempts-1 {
			break
		}

		wait := p.backoff(attempt)
		slog.WarnContext(ctx, "Transient store error, retrying",
			"operation", op,
			"attempt", attempt+1,
			"backoff", wait,
			"error", err)

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}
	return result, err
}
