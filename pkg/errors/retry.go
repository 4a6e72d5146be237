package errors

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Retry configuration defaults.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 15 * time.Second
	DefaultJitter     = 0.4
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay before first retry
	MaxDelay   time.Duration // Maximum delay between retries
	Jitter     float64       // Jitter factor (0.0 to 1.0)
}

// DefaultRetryConfig returns a RetryConfig with sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Jitter:     DefaultJitter,
	}
}

// RetryWithResult executes fn with exponential backoff and returns its result.
// Only errors reported retryable by IsRetryable are retried. Mutating API
// calls must not go through here; they are issued exactly once by callers.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return result, Wrapf(lastErr, "context cancelled after %d attempts", attempt)
			}
			return result, Wrap(err, "context cancelled before retry")
		}

		var err error
		result, err = fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(lastErr) {
			return result, lastErr
		}
		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return result, Wrapf(lastErr, "context cancelled during retry backoff (attempt %d/%d)", attempt+1, cfg.MaxRetries)
		case <-time.After(CalculateBackoff(cfg.BaseDelay, cfg.MaxDelay, attempt, cfg.Jitter)):
		}
	}

	return result, Wrapf(lastErr, "failed after %d retries", cfg.MaxRetries)
}

// CalculateBackoff computes the delay for a retry attempt using exponential
// backoff with jitter: min(base * 2^attempt, max) scaled by a random
// multiplier in [1-jitter/2, 1+jitter/2].
func CalculateBackoff(base, max time.Duration, attempt int, jitter float64) time.Duration {
	expDelay := float64(base) * math.Pow(2, float64(attempt))
	if expDelay > float64(max) {
		expDelay = float64(max)
	}
	return time.Duration(expDelay * (1.0 - jitter/2 + jitter*rand.Float64()))
}
