package resilience

import (
	"fmt"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// Closed is normal operation: calls pass through.
	Closed State = iota

	// Open rejects calls without invoking the operation.
	Open

	// HalfOpen permits a trial call after the recovery timeout.
	HalfOpen
)

func (state State) String() string {
	switch state {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// OpenError is returned when the breaker rejects a call without invoking
// the wrapped operation.
type OpenError struct {
	State    State
	Failures int
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker is %s after %d failure(s)", e.State, e.Failures)
}

// BreakerConfig configures a CircuitBreaker.
type BreakerConfig struct {
	// FailureThreshold is the number of matched failures that opens the
	// circuit. Defaults to 5.
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before a trial
	// call is permitted. Defaults to 60s.
	RecoveryTimeout time.Duration

	// Matches decides which errors count toward the failure threshold.
	// A nil Matches counts every error.
	Matches func(error) bool
}

// CircuitBreaker guards an operation against cascading failures. All state
// transitions happen under one lock per breaker instance; independent named
// breakers do not contend.
type CircuitBreaker struct {
	config BreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time

	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker with the given configuration.
func NewCircuitBreaker(config BreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		config: config,
		state:  Closed,
		now:    time.Now,
	}
}

// Call invokes operation if the circuit permits it. While open, Call returns
// an *OpenError without invoking the operation. A success closes the circuit
// and resets the failure count; a matched failure increments the count and
// opens the circuit once the threshold is reached.
func (breaker *CircuitBreaker) Call(operation func() error) error {
	if err := breaker.allow(); err != nil {
		return err
	}

	err := operation()
	if err == nil {
		breaker.onSuccess()
		return nil
	}
	if breaker.config.Matches == nil || breaker.config.Matches(err) {
		breaker.onFailure()
	}
	return err
}

func (breaker *CircuitBreaker) allow() error {
	breaker.mu.Lock()
	defer breaker.mu.Unlock()

	switch breaker.state {
	case Closed, HalfOpen:
		return nil
	default: // Open
		if breaker.now().Sub(breaker.lastFailure) >= breaker.config.RecoveryTimeout {
			breaker.state = HalfOpen
			return nil
		}
		return &OpenError{State: breaker.state, Failures: breaker.failures}
	}
}

func (breaker *CircuitBreaker) onSuccess() {
	breaker.mu.Lock()
	defer breaker.mu.Unlock()

	breaker.failures = 0
	breaker.state = Closed
}

func (breaker *CircuitBreaker) onFailure() {
	breaker.mu.Lock()
	defer breaker.mu.Unlock()

	breaker.failures++
	breaker.lastFailure = breaker.now()
	if breaker.failures >= breaker.config.FailureThreshold || breaker.state == HalfOpen {
		breaker.state = Open
	}
}

// State returns the current circuit state.
func (breaker *CircuitBreaker) State() State {
	breaker.mu.Lock()
	defer breaker.mu.Unlock()
	return breaker.state
}

// Failures returns the current matched-failure count.
func (breaker *CircuitBreaker) Failures() int {
	breaker.mu.Lock()
	defer breaker.mu.Unlock()
	return breaker.failures
}

// Reset forces the breaker back to the closed state with a zero failure
// count.
func (breaker *CircuitBreaker) Reset() {
	breaker.mu.Lock()
	defer breaker.mu.Unlock()

	breaker.state = Closed
	breaker.failures = 0
	breaker.lastFailure = time.Time{}
}
