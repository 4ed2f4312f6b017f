// Package resilience provides the circuit breaker and retry primitives that
// guard batch executions against a flaky or unreachable store.
//
// Both primitives are composed explicitly at the call site; there is no
// ambient global state. A Registry holds named instances so that several
// components can share one breaker for the same downstream resource:
//
//	registry := resilience.NewRegistry()
//	breaker := registry.RegisterBreaker("database", resilience.BreakerConfig{
//	    FailureThreshold: 5,
//	    RecoveryTimeout:  60 * time.Second,
//	    Matches:          db.IsConnError,
//	})
//	retry := registry.RegisterRetry("database", resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   time.Second,
//	    MaxDelay:    30 * time.Second,
//	    Retryable:   db.IsConnError,
//	})
//
//	err := retry.Execute(func() error {
//	    return breaker.Call(operation)
//	})
package resilience
