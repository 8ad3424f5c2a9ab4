// Package retry re-runs operations that failed for transient reasons.
// Only errors that declare themselves retryable are retried.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0; 0.1 gives +/-10%

	// OnRetry, when set, is called before each wait with the 1-based number
	// of the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns defaults suited to a remote completion call:
// 2 retries starting at 250ms, capped at 2s, doubling, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   2,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// WithMaxRetries returns a copy of DefaultConfig with MaxRetries set.
func WithMaxRetries(n int) *Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = n
	return cfg
}

// applyJitter returns delay +/- (delay * jitterFactor * random(-1, 1)).
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// RetryableError is implemented by errors that know whether they are transient.
type RetryableError interface {
	error
	IsRetryable() bool
}

// IsRetryable reports whether any error in err's chain declares itself
// retryable. Errors that say nothing are not retried.
func IsRetryable(err error) bool {
	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}

// DoIfRetryable runs fn until it succeeds, fails with a non-retryable error,
// or MaxRetries retries are spent. Cancellation of ctx during a wait returns
// the last error from fn, which keeps its classification.
func DoIfRetryable[T any](ctx context.Context, cfg *Config, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	delay := cfg.InitialDelay
	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= cfg.MaxRetries || !IsRetryable(err) || ctx.Err() != nil {
			return result, err
		}

		wait := applyJitter(delay, cfg.JitterFactor)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return result, err
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
