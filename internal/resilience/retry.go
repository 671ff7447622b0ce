// Package resilience provides retry and circuit breaker patterns for
// calls against unreliable scraper sources.
package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls retry behavior with bounded exponential backoff.
// Backoff is deterministic: delay(n) = min(InitialBackoff * Multiplier^n,
// MaxBackoff) for the n-th retry (0-indexed), so test runs are
// reproducible. A server-provided Retry-After hint overrides the computed
// delay when it is longer.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	// A value of 0 means no retries. Default: 3.
	MaxRetries int

	// InitialBackoff is the base delay before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration. Default: 30s.
	MaxBackoff time.Duration

	// Multiplier scales the backoff after each attempt. Default: 2.0.
	Multiplier float64

	// ShouldRetry optionally overrides the default transient-error check.
	// If nil, IsTransient is used.
	ShouldRetry func(err error) bool

	// OnRetry is called before each backoff sleep with the 0-indexed
	// attempt, the failure, and the computed delay. Observational only;
	// it must not alter control flow.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig returns the stock retry configuration for source
// lookups.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// Do executes fn with retry. Only errors deemed transient (via ShouldRetry
// or the default IsTransient check) are retried; anything else propagates
// immediately. When retries are exhausted the last transient error
// propagates. Context cancellation stops retries immediately.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for operations that return a value.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !shouldRetry(lastErr) {
			return zero, lastErr
		}

		if attempt >= cfg.MaxRetries {
			break
		}

		delay := computeBackoff(attempt, cfg)
		if hint := RetryAfterHint(lastErr); hint > delay {
			delay = hint
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return cfg
}

func computeBackoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	return time.Duration(delay)
}

// RetryLogger returns an OnRetry callback that logs each retry attempt
// with source and identifier context.
func RetryLogger(source, identifier string) func(int, error, time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		zap.L().Warn("retrying source lookup",
			zap.String("source", source),
			zap.String("identifier", identifier),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
	}
}
