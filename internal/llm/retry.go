package llm

import (
	"context"
	"time"
)

// RetryConfig configures the bounded retry on transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of calls, first attempt included.
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// DefaultRetryConfig retries exactly once after a short fixed delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 2, Delay: 2 * time.Second}
}

// RetryProvider is a decorator that retries transient failures (timeout,
// rate limit) with a fixed inter-attempt delay. Fatal failures — quota,
// auth, anything else — pass through on the first occurrence.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		resp, err := r.inner.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}

		// Last attempt: return the error without sleeping.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.config.Delay):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}
