package resilience

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func newTestRetry(config RetryConfig) (*Retry, *[]time.Duration) {
	retry := NewRetry(config)
	var slept []time.Duration
	retry.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}
	return retry, &slept
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	retry, slept := newTestRetry(RetryConfig{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxDelay:        time.Minute,
		ExponentialBase: 2.0,
	})

	calls := 0
	err := retry.Execute(func() error {
		calls++
		if calls < 3 {
			return errStore
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("operation called %d time(s), want 3", calls)
	}
	expected := []time.Duration{time.Second, 2 * time.Second}
	if !reflect.DeepEqual(*slept, expected) {
		t.Errorf("delays = %v, want %v", *slept, expected)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	errFatal := errors.New("syntax error")
	retry, slept := newTestRetry(RetryConfig{
		MaxAttempts: 3,
		Retryable:   func(err error) bool { return errors.Is(err, errStore) },
	})

	calls := 0
	err := retry.Execute(func() error {
		calls++
		return errFatal
	})

	if !errors.Is(err, errFatal) {
		t.Fatalf("Execute() = %v, want %v", err, errFatal)
	}
	if calls != 1 {
		t.Errorf("operation called %d time(s), want 1", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v before a non-retryable failure", *slept)
	}
}

func TestRetryExhaustion(t *testing.T) {
	retry, slept := newTestRetry(RetryConfig{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxDelay:        time.Minute,
		ExponentialBase: 2.0,
	})

	calls := 0
	err := retry.Execute(func() error {
		calls++
		return errStore
	})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Execute() = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, errStore) {
		t.Errorf("ExhaustedError does not wrap the last failure: %v", err)
	}
	if calls != 3 {
		t.Errorf("operation called %d time(s), want 3", calls)
	}
	if len(*slept) != 2 {
		t.Errorf("slept %d time(s), want 2 (no delay after the final attempt)", len(*slept))
	}
}

func TestRetryDelayCappedAtMax(t *testing.T) {
	retry, slept := newTestRetry(RetryConfig{
		MaxAttempts:     5,
		BaseDelay:       time.Second,
		MaxDelay:        3 * time.Second,
		ExponentialBase: 2.0,
	})

	retry.Execute(func() error { return errStore })

	expected := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	if !reflect.DeepEqual(*slept, expected) {
		t.Errorf("delays = %v, want %v", *slept, expected)
	}
}

func TestRetryJitterStaysInRange(t *testing.T) {
	retry := NewRetry(RetryConfig{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxDelay:        time.Minute,
		ExponentialBase: 2.0,
		Jitter:          true,
	})

	for i := 0; i < 100; i++ {
		d := retry.delay(1)
		if d < 500*time.Millisecond || d >= 1500*time.Millisecond {
			t.Fatalf("jittered delay %v outside [0.5s, 1.5s)", d)
		}
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	breaker := registry.RegisterBreaker("database", BreakerConfig{FailureThreshold: 2})
	retry := registry.RegisterRetry("database", RetryConfig{MaxAttempts: 2})

	if got, ok := registry.Breaker("database"); !ok || got != breaker {
		t.Errorf("Breaker(database) = %v, %v; want registered instance", got, ok)
	}
	if got, ok := registry.Retry("database"); !ok || got != retry {
		t.Errorf("Retry(database) = %v, %v; want registered instance", got, ok)
	}
	if _, ok := registry.Breaker("cache"); ok {
		t.Error("Breaker(cache) reported an instance that was never registered")
	}
	if _, ok := registry.Retry("cache"); ok {
		t.Error("Retry(cache) reported an instance that was never registered")
	}
}
