package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout indicates the call exceeded its deadline. Transient.
type ErrTimeout struct {
	Timeout time.Duration
	Err     error
}

func (e *ErrTimeout) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("provider timed out after %s: %v", e.Timeout, e.Err)
	}
	return fmt.Sprintf("provider timed out: %v", e.Err)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrRateLimit indicates the provider returned a rate limit error (429).
// Transient.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrQuotaExceeded indicates the account's quota or credit is exhausted.
// Fatal; retrying cannot help.
type ErrQuotaExceeded struct {
	Err error
}

func (e *ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("provider quota exceeded: %v", e.Err)
}

func (e *ErrQuotaExceeded) Unwrap() error { return e.Err }

// ErrAuthInvalid indicates the API key was rejected. Fatal.
type ErrAuthInvalid struct {
	Err error
}

func (e *ErrAuthInvalid) Error() string {
	return fmt.Sprintf("provider rejected credentials: %v", e.Err)
}

func (e *ErrAuthInvalid) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers everything else: 5xx, network failures,
// malformed provider responses. Fatal for the purposes of automatic retry.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// IsTransient reports whether the error is expected to succeed on immediate
// retry: timeouts and rate limits. Context cancellation is never transient.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var timeout *ErrTimeout
	if errors.As(err, &timeout) {
		return true
	}
	var rateLimit *ErrRateLimit
	return errors.As(err, &rateLimit)
}
