package resilience

import "sync"

// Registry holds named circuit breakers and retry strategies. It replaces
// module-level registries: construct one Registry and pass it to whatever
// needs to look up a shared instance by name.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	retries  map[string]*Retry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
		retries:  make(map[string]*Retry),
	}
}

// RegisterBreaker creates a breaker under the given name, replacing any
// previous registration, and returns it.
func (registry *Registry) RegisterBreaker(name string, config BreakerConfig) *CircuitBreaker {
	breaker := NewCircuitBreaker(config)

	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.breakers[name] = breaker
	return breaker
}

// Breaker looks up a registered breaker by name.
func (registry *Registry) Breaker(name string) (*CircuitBreaker, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	breaker, ok := registry.breakers[name]
	return breaker, ok
}

// RegisterRetry creates a retry strategy under the given name, replacing any
// previous registration, and returns it.
func (registry *Registry) RegisterRetry(name string, config RetryConfig) *Retry {
	retry := NewRetry(config)

	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.retries[name] = retry
	return retry
}

// Retry looks up a registered retry strategy by name.
func (registry *Registry) Retry(name string) (*Retry, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	retry, ok := registry.retries[name]
	return retry, ok
}
