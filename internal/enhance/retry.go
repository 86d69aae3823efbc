package enhance

import (
	"context"
	"log/slog"
	"time"
)

// RetryConfig controls the bounded retry around each enhancement request.
type RetryConfig struct {
	MaxAttempts int           // total attempts including the first (default 3)
	BaseDelay   time.Duration // initial backoff, doubles after each failure (default 1s)
}

// DefaultRetryConfig returns the production retry budget.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Second}
}

// executeWithRetry runs fn up to cfg.MaxAttempts times, sleeping with
// doubling backoff between attempts. Only transient failures are retried;
// anything else propagates immediately. Backoff sleeps are cancellable via
// ctx, and ctx is checked before every attempt.
func executeWithRetry(ctx context.Context, cfg RetryConfig, fn func() (string, error)) (string, int, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", attempt - 1, err
		}

		result, err := fn()
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if !isTransient(err) {
			return "", attempt, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		slog.Warn("enhance.retrying", "attempt", attempt, "delay", delay, "error", err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", attempt, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return "", cfg.MaxAttempts, lastErr
}
