// Package resilience implements the fault-tolerance layer that sits between
// the crypto orchestrator and the outside world: a per-operation circuit
// breaker, a retry policy with exponential backoff, and a degradation
// registry that lets the application keep serving a reduced feature set
// when a dependency is unhealthy instead of failing outright.
package resilience

import (
	"sync"
	"time"
)

// State is one of the three circuit breaker states.
type State int

const (
	// StateClosed allows calls through and counts failures.
	StateClosed State = iota
	// StateOpen rejects calls immediately until openTimeout elapses.
	StateOpen
	// StateHalfOpen allows a limited number of probe calls through to test recovery.
	StateHalfOpen
)

// String renders the state name used in logs and metrics labels.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// breakerOpenError is the type of ErrBreakerOpen.
type breakerOpenError struct{}

func (breakerOpenError) Error() string { return "circuit breaker is open" }

// ErrBreakerOpen is returned by Call when the breaker rejects the call outright.
var ErrBreakerOpen error = breakerOpenError{}

// Breaker is a thread-safe circuit breaker for a single named dependency
// (e.g. "file_write", "kdf"). It opens after FailureThreshold consecutive
// failures, stays open for OpenTimeout, then allows HalfOpenMaxProbes trial
// calls through before deciding whether to close or re-open.
type Breaker struct {
	name              string
	failureThreshold  int
	openTimeout       time.Duration
	halfOpenMaxProbes int

	mu              sync.Mutex
	state           State
	consecutiveFail int
	openedAt        time.Time
	halfOpenInFlight int
}

// Config configures a new Breaker.
type Config struct {
	Name              string
	FailureThreshold  int
	OpenTimeout       time.Duration
	HalfOpenMaxProbes int
}

// New creates a Breaker in the closed state. FailureThreshold and
// HalfOpenMaxProbes are floored at 1 if given as zero or negative.
func New(cfg Config) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold < 1 {
		threshold = 1
	}
	probes := cfg.HalfOpenMaxProbes
	if probes < 1 {
		probes = 1
	}
	return &Breaker{
		name:              cfg.Name,
		failureThreshold:  threshold,
		openTimeout:       cfg.OpenTimeout,
		halfOpenMaxProbes: probes,
		state:             StateClosed,
	}
}

// Name returns the breaker's identifying name.
func (b *Breaker) Name() string { return b.name }

// State returns the breaker's current state, transitioning Open to
// HalfOpen first if openTimeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked()
	return b.state
}

// transitionLocked moves an Open breaker to HalfOpen once openTimeout has
// passed. Caller must hold b.mu.
func (b *Breaker) transitionLocked() {
	if b.state == StateOpen && time.Since(b.openedAt) >= b.openTimeout {
		b.state = StateHalfOpen
		b.halfOpenInFlight = 0
	}
}

// Allow reports whether a call may proceed, reserving a half-open probe
// slot if the breaker is transitioning. Every Allow that returns true must
// be paired with exactly one call to Success or Failure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked()

	switch b.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		if b.halfOpenInFlight >= b.halfOpenMaxProbes {
			return false
		}
		b.halfOpenInFlight++
		return true
	default: // StateOpen
		return false
	}
}

// Success records a successful call, closing the breaker if it was
// half-open or resetting the failure count if it was closed.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.state = StateClosed
		b.consecutiveFail = 0
		b.halfOpenInFlight = 0
	case StateClosed:
		b.consecutiveFail = 0
	}
}

// Failure records a failed call. A half-open probe failure reopens the
// breaker immediately; a closed breaker opens once consecutive failures
// reach FailureThreshold.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.open()
	case StateClosed:
		b.consecutiveFail++
		if b.consecutiveFail >= b.failureThreshold {
			b.open()
		}
	}
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = time.Now()
	b.consecutiveFail = 0
	b.halfOpenInFlight = 0
}

// Call runs fn if the breaker allows it, recording the outcome. Returns
// ErrBreakerOpen without calling fn if the breaker is rejecting calls.
func (b *Breaker) Call(fn func() error) error {
	if !b.Allow() {
		return ErrBreakerOpen
	}
	err := fn()
	if err != nil {
		b.Failure()
		return err
	}
	b.Success()
	return nil
}
