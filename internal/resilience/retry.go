package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy wraps an exponential backoff schedule with a hard cap on
// attempts, matching the bounded-retry requirement: unlike backoff.Retry's
// default unbounded elapsed time, callers get a fixed MaxAttempts ceiling.
type RetryPolicy struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// RetryConfig configures a RetryPolicy.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// NewRetryPolicy creates a RetryPolicy. MaxAttempts is floored at 1.
func NewRetryPolicy(cfg RetryConfig) *RetryPolicy {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &RetryPolicy{
		maxAttempts:     attempts,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
	}
}

// newBackoff builds a fresh exponential backoff with jitter, capped at
// MaxInterval, for a single Do call.
func (p *RetryPolicy) newBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval
	b.MaxInterval = p.maxInterval
	b.MaxElapsedTime = 0 // bounded by maxAttempts instead, not wall-clock
	return backoff.WithContext(b, ctx)
}

// Classifier reports whether err is transient and worth retrying. A
// classifier returning false marks err non-recoverable: Do gives up
// immediately regardless of remaining attempts.
type Classifier func(err error) bool

// AlwaysTransient treats every non-nil error as retryable. It is the
// default classification when Do is called without one, preserving the
// historical attempt-count-only behavior for callers that don't need to
// distinguish error causes.
func AlwaysTransient(error) bool { return true }

// Do runs fn, retrying on error up to MaxAttempts with exponential backoff
// and jitter between attempts. It stops early if ctx is cancelled. classify
// is optional; when given, an error it reports as non-transient is never
// retried, no matter how many attempts remain. Only the first classifier
// argument is consulted.
func (p *RetryPolicy) Do(ctx context.Context, fn func() error, classify ...Classifier) error {
	isTransient := AlwaysTransient
	if len(classify) > 0 && classify[0] != nil {
		isTransient = classify[0]
	}

	b := p.newBackoff(ctx)
	attempt := 0

	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt >= p.maxAttempts {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, b)
}
