package resilience

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ExhaustedError is returned when every retry attempt failed. It wraps the
// last observed failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempt(s) failed: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Defaults to 3.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt. Defaults to 1s.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay. Defaults to 60s.
	MaxDelay time.Duration

	// ExponentialBase is the backoff multiplier. Defaults to 2.0.
	ExponentialBase float64

	// Jitter multiplies each delay by a uniform random factor in
	// [0.5, 1.5) to avoid synchronized retry storms.
	Jitter bool

	// Retryable decides whether a failure is worth another attempt. A nil
	// Retryable retries every error.
	Retryable func(error) bool
}

// Retry executes an operation up to MaxAttempts times with exponential
// backoff between attempts. Attempt N+1 never starts before attempt N's
// delay has elapsed; the delay is a blocking sleep on the calling goroutine.
type Retry struct {
	config RetryConfig

	sleep func(time.Duration)
}

// NewRetry creates a retry strategy with the given configuration.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 60 * time.Second
	}
	if config.ExponentialBase <= 0 {
		config.ExponentialBase = 2.0
	}
	return &Retry{
		config: config,
		sleep:  time.Sleep,
	}
}

// Execute runs operation until it succeeds, fails with a non-retryable
// error, or the attempt budget is spent. Non-retryable failures propagate
// immediately; exhaustion returns an *ExhaustedError wrapping the last
// failure.
func (retry *Retry) Execute(operation func() error) error {
	var last error

	for attempt := 1; attempt <= retry.config.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if retry.config.Retryable != nil && !retry.config.Retryable(err) {
			return err
		}

		last = err
		if attempt < retry.config.MaxAttempts {
			retry.sleep(retry.delay(attempt))
		}
	}

	return &ExhaustedError{Attempts: retry.config.MaxAttempts, Err: last}
}

// delay computes the backoff before attempt+1:
// min(maxDelay, baseDelay * exponentialBase^(attempt-1)), jittered when
// enabled.
func (retry *Retry) delay(attempt int) time.Duration {
	d := float64(retry.config.BaseDelay) * math.Pow(retry.config.ExponentialBase, float64(attempt-1))
	if d > float64(retry.config.MaxDelay) {
		d = float64(retry.config.MaxDelay)
	}
	if retry.config.Jitter {
		d *= 0.5 + rand.Float64()
	}
	return time.Duration(d)
}
