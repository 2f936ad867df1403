package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker's position in its closed/open/half-open cycle.
type State int

const (
	// StateClosed admits every request. This is the healthy default.
	StateClosed State = iota

	// StateOpen rejects every request until the cool-down elapses. The
	// breaker trips into this state after too many consecutive failures.
	StateOpen

	// StateHalfOpen admits a bounded number of probe requests so the
	// breaker can learn whether the remote source has recovered.
	StateHalfOpen
)

// String returns the lowercase state name used in logs and metric labels.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes when the breaker trips and how it recovers.
type CircuitBreakerConfig struct {
	// MaxFailures is how many consecutive failures trip the breaker open.
	MaxFailures int

	// Timeout is the cool-down spent open before probing may begin.
	Timeout time.Duration

	// HalfOpenLimit bounds concurrent probes while half-open and is also
	// the number of consecutive probe successes needed to close again.
	HalfOpenLimit int
}

// CircuitBreaker keeps a failing quote source from being hammered while it
// is down. Once MaxFailures calls in a row have failed it rejects everything
// for Timeout, then lets a handful of probes through; those probes decide
// whether the circuit closes again or snaps back open.
type CircuitBreaker struct {
	mu    sync.RWMutex
	state State
	cfg   CircuitBreakerConfig

	failureStreak int       // consecutive failures while closed
	successStreak int       // consecutive probe successes while half-open
	activeProbes  int       // probes currently admitted while half-open
	lastFailureAt time.Time // start of the open cool-down window

	// onStateChange, when set, fires on every transition.
	onStateChange func(from, to State)

	// clock stands in for time.Now so tests can steer the cool-down.
	clock func() time.Time
}

// NewCircuitBreaker returns a closed breaker with the given thresholds.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		state: StateClosed,
		cfg:   cfg,
		clock: time.Now,
	}
}

// OnStateChange registers a callback invoked on every state transition,
// typically to log the flip and update a gauge.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Allow reports whether the caller may issue a request right now.
//
// While open it also watches the clock: the first call after the cool-down
// flips the breaker to half-open and is admitted as the first probe. While
// half-open, at most HalfOpenLimit probes run at once.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.clock().Sub(cb.lastFailureAt) < cb.cfg.Timeout {
			return false
		}
		cb.shift(StateHalfOpen)
		cb.activeProbes = 1
		return true

	case StateHalfOpen:
		if cb.activeProbes >= cb.cfg.HalfOpenLimit {
			return false
		}
		cb.activeProbes++
		return true

	default:
		return false
	}
}

// RecordSuccess feeds a successful call back into the breaker. A success
// while closed clears the failure streak; enough successes while half-open
// close the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureStreak = 0

	case StateHalfOpen:
		cb.activeProbes--
		cb.successStreak++
		if cb.successStreak >= cb.cfg.HalfOpenLimit {
			cb.shift(StateClosed)
		}
	}
}

// RecordFailure feeds a failed call back into the breaker. Reaching
// MaxFailures while closed trips it open; a single failed probe while
// half-open snaps it straight back open.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureAt = cb.clock()

	switch cb.state {
	case StateClosed:
		cb.failureStreak++
		if cb.failureStreak >= cb.cfg.MaxFailures {
			cb.shift(StateOpen)
		}

	case StateHalfOpen:
		cb.activeProbes--
		cb.shift(StateOpen)
	}
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// shift moves to newState and resets the streak counters. Callers hold mu.
func (cb *CircuitBreaker) shift(newState State) {
	if cb.state == newState {
		return
	}

	from := cb.state
	cb.state = newState
	cb.failureStreak = 0
	cb.successStreak = 0

	if cb.onStateChange != nil {
		// Fire the callback off the lock; it may call back into the breaker.
		go cb.onStateChange(from, newState)
	}
}
