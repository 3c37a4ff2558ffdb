package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all requests.
	StateOpen
	// StateHalfOpen means the circuit is probing whether the dependency
	// has recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures in the closed
	// state that opens the circuit. Must be >= 1.
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before trial
	// calls are allowed. Must be > 0.
	RecoveryTimeout time.Duration

	// HalfOpenMaxCalls is the trial-call budget in the half-open state.
	// The circuit closes only after this many trials succeed. Must be >= 1.
	HalfOpenMaxCalls int

	// OnStateChange, if set, is called after every state transition.
	OnStateChange func(from, to State)

	// IsFailure decides whether an operation error counts as a failure.
	// Defaults to counting every non-nil error.
	IsFailure func(err error) bool
}

// CircuitBreaker wraps an operation with failure-rate-based
// short-circuiting. One instance guards one dependency; all state is
// process-lifetime and held in memory.
type CircuitBreaker struct {
	config Config

	mu         sync.Mutex
	state      State
	failures   int       // consecutive failures, meaningful while closed
	openedAt   time.Time // valid while open
	trialsUsed int       // trial calls admitted, meaningful while half-open
	successes  int       // successful trials, meaningful while half-open

	now func() time.Time
}

// New creates a circuit breaker in the closed state.
func New(config Config) (*CircuitBreaker, error) {
	if config.FailureThreshold < 1 {
		return nil, fmt.Errorf("%w: failure threshold must be >= 1, got %d", domain.ErrInvalidConfig, config.FailureThreshold)
	}
	if config.RecoveryTimeout <= 0 {
		return nil, fmt.Errorf("%w: recovery timeout must be > 0, got %s", domain.ErrInvalidConfig, config.RecoveryTimeout)
	}
	if config.HalfOpenMaxCalls < 1 {
		return nil, fmt.Errorf("%w: half-open max calls must be >= 1, got %d", domain.ErrInvalidConfig, config.HalfOpenMaxCalls)
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}, nil
}

// Execute runs op through the breaker. While the circuit is open, or the
// half-open trial budget is exhausted, it returns ErrCircuitOpen without
// invoking op; otherwise op's own result is propagated unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}
	err := op(ctx)
	cb.afterCall(err)
	return err
}

// State returns the current state, applying the lazy open-to-half-open
// transition if the recovery timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the breaker back to the closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionLocked(StateClosed)
	cb.failures = 0
}

// beforeCall admits or rejects a call. In the half-open state the trial
// budget is a shared counter incremented before the call runs, so
// concurrent callers cannot collectively exceed it.
func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.trialsUsed >= cb.config.HalfOpenMaxCalls {
			return ErrCircuitOpen
		}
		cb.trialsUsed++
	}
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := cb.config.IsFailure(err)

	switch cb.state {
	case StateClosed:
		if failed {
			cb.failures++
			if cb.failures >= cb.config.FailureThreshold {
				cb.openedAt = cb.now()
				cb.transitionLocked(StateOpen)
			}
		} else {
			cb.failures = 0
		}

	case StateHalfOpen:
		if failed {
			// Any trial failure reopens immediately; trial counts are
			// discarded and the recovery timeout starts over.
			cb.openedAt = cb.now()
			cb.transitionLocked(StateOpen)
			return
		}
		cb.successes++
		if cb.successes >= cb.config.HalfOpenMaxCalls {
			cb.transitionLocked(StateClosed)
			cb.failures = 0
		}

	case StateOpen:
		// A call admitted as a half-open trial may report back after a
		// concurrent trial failure already reopened the circuit. The
		// open state owns the outcome; nothing to record.
	}
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.RecoveryTimeout {
		cb.transitionLocked(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if to == StateHalfOpen {
		cb.trialsUsed = 0
		cb.successes = 0
	}
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}
