package provider

import (
	"fmt"
	"sync"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
)

// Factory is a constructor function that creates a new Provider instance.
type Factory func(cfg Config) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[agent.Provider]Factory)
)

// Register makes a provider factory available by name. It is called from an
// init() function in the adapter package; the registry is read-only after
// process startup.
func Register(name agent.Provider, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("provider: duplicate registration for %q", name))
	}
	factories[name] = factory
}

// New creates a Provider by name using the registered factory.
func New(name agent.Provider, cfg Config) (Provider, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, name)
	}
	return factory(cfg)
}

// Available returns the names of all registered providers.
func Available() []agent.Provider {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]agent.Provider, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
