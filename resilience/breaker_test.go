package resilience

import (
	"errors"
	"testing"
	"time"
)

var errStore = errors.New("store unavailable")

// fakeClock lets tests advance the breaker's view of time.
type fakeClock struct {
	current time.Time
}

func (clock *fakeClock) now() time.Time {
	return clock.current
}

func (clock *fakeClock) advance(d time.Duration) {
	clock.current = clock.current.Add(d)
}

func newTestBreaker(config BreakerConfig) (*CircuitBreaker, *fakeClock) {
	breaker := NewCircuitBreaker(config)
	clock := &fakeClock{current: time.Unix(1000, 0)}
	breaker.now = clock.now
	return breaker, clock
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	breaker, _ := newTestBreaker(BreakerConfig{FailureThreshold: 2, RecoveryTimeout: time.Minute})

	fail := func() error { return errStore }

	if err := breaker.Call(fail); !errors.Is(err, errStore) {
		t.Fatalf("first failure: got %v, want %v", err, errStore)
	}
	if state := breaker.State(); state != Closed {
		t.Errorf("after one failure state = %v, want %v", state, Closed)
	}

	if err := breaker.Call(fail); !errors.Is(err, errStore) {
		t.Fatalf("second failure: got %v, want %v", err, errStore)
	}
	if state := breaker.State(); state != Open {
		t.Errorf("after two failures state = %v, want %v", state, Open)
	}
	if failures := breaker.Failures(); failures != 2 {
		t.Errorf("failure count = %d, want 2", failures)
	}
}

func TestOpenBreakerRejectsWithoutInvoking(t *testing.T) {
	breaker, _ := newTestBreaker(BreakerConfig{FailureThreshold: 1, RecoveryTimeout: time.Minute})

	if err := breaker.Call(func() error { return errStore }); !errors.Is(err, errStore) {
		t.Fatalf("priming failure: got %v", err)
	}

	invoked := false
	err := breaker.Call(func() error {
		invoked = true
		return nil
	})

	if invoked {
		t.Error("operation was invoked while the circuit was open")
	}
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %v, want *OpenError", err)
	}
	if openErr.State != Open || openErr.Failures != 1 {
		t.Errorf("OpenError = %+v, want state open with 1 failure", openErr)
	}
}

func TestBreakerRecoversAfterTimeout(t *testing.T) {
	breaker, clock := newTestBreaker(BreakerConfig{FailureThreshold: 2, RecoveryTimeout: time.Minute})

	fail := func() error { return errStore }
	breaker.Call(fail)
	breaker.Call(fail)
	if state := breaker.State(); state != Open {
		t.Fatalf("state = %v, want %v", state, Open)
	}

	clock.advance(time.Minute)

	// Trial call is permitted and a success closes the circuit.
	if err := breaker.Call(func() error { return nil }); err != nil {
		t.Fatalf("trial call failed: %v", err)
	}
	if state := breaker.State(); state != Closed {
		t.Errorf("state after trial success = %v, want %v", state, Closed)
	}
	if failures := breaker.Failures(); failures != 0 {
		t.Errorf("failure count after close = %d, want 0", failures)
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	breaker, clock := newTestBreaker(BreakerConfig{FailureThreshold: 2, RecoveryTimeout: time.Minute})

	fail := func() error { return errStore }
	breaker.Call(fail)
	breaker.Call(fail)
	clock.advance(time.Minute)

	if err := breaker.Call(fail); !errors.Is(err, errStore) {
		t.Fatalf("trial failure: got %v", err)
	}
	if state := breaker.State(); state != Open {
		t.Errorf("state after trial failure = %v, want %v", state, Open)
	}
}

func TestBreakerIgnoresUnmatchedErrors(t *testing.T) {
	errOther := errors.New("constraint violation")
	breaker, _ := newTestBreaker(BreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
		Matches:          func(err error) bool { return errors.Is(err, errStore) },
	})

	if err := breaker.Call(func() error { return errOther }); !errors.Is(err, errOther) {
		t.Fatalf("got %v, want %v", err, errOther)
	}
	if state := breaker.State(); state != Closed {
		t.Errorf("unmatched error tripped the breaker: state = %v", state)
	}
	if failures := breaker.Failures(); failures != 0 {
		t.Errorf("unmatched error counted: failures = %d", failures)
	}
}

func TestBreakerReset(t *testing.T) {
	breaker, _ := newTestBreaker(BreakerConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour})

	breaker.Call(func() error { return errStore })
	if state := breaker.State(); state != Open {
		t.Fatalf("state = %v, want %v", state, Open)
	}

	breaker.Reset()

	if state := breaker.State(); state != Closed {
		t.Errorf("state after reset = %v, want %v", state, Closed)
	}
	if err := breaker.Call(func() error { return nil }); err != nil {
		t.Errorf("call after reset failed: %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{Closed, "closed"},
		{Open, "open"},
		{HalfOpen, "half-open"},
		{State(9), "unknown"},
	}

	for _, test := range tests {
		if actual := test.state.String(); actual != test.expected {
			t.Errorf("State(%d).String() = %q, want %q", int(test.state), actual, test.expected)
		}
	}
}
