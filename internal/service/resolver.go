// Package service implements the use cases: agent lifecycle, document
// management, and the generation pipeline.
package service

import (
	"fmt"
	"sync"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/port/provider"
)

// ProviderResolver yields the provider adapter for an agent's provider
// family.
type ProviderResolver interface {
	Resolve(name agent.Provider) (provider.Provider, error)
}

// Resolver builds provider adapters from process configuration. Adapters
// are constructed once per provider family and reused.
type Resolver struct {
	providers config.Providers
	gen       config.Generation
	breaker   config.Breaker

	mu    sync.Mutex
	cache map[agent.Provider]provider.Provider
}

// NewResolver creates a Resolver over the given provider settings.
func NewResolver(providers config.Providers, gen config.Generation, breaker config.Breaker) *Resolver {
	return &Resolver{
		providers: providers,
		gen:       gen,
		breaker:   breaker,
		cache:     make(map[agent.Provider]provider.Provider),
	}
}

// Resolve returns the adapter for the named provider family, constructing
// it on first use.
func (r *Resolver) Resolve(name agent.Provider) (provider.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.cache[name]; ok {
		return p, nil
	}

	settings, ok := r.providers.ProviderFor(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, name)
	}

	p, err := provider.New(name, provider.Config{
		APIKey:           settings.APIKey,
		BaseURL:          settings.BaseURL,
		Models:           settings.Models,
		Timeout:          r.gen.Timeout,
		RetryAttempts:    r.gen.RetryAttempts,
		RetryBaseDelay:   r.gen.RetryBaseDelay,
		MaxContentLength: r.gen.MaxContentLength,
		TruncateOverflow: r.gen.TruncateOverflow,

		BreakerMaxFailures: r.breaker.MaxFailures,
		BreakerTimeout:     r.breaker.Timeout,
	})
	if err != nil {
		return nil, err
	}
	r.cache[name] = p
	return p, nil
}

// Warm eagerly constructs adapters for every provider with an API key set,
// so misconfiguration surfaces at startup instead of on first request.
func (r *Resolver) Warm() {
	for _, name := range []agent.Provider{agent.ProviderGroq, agent.ProviderOpenAI, agent.ProviderAnthropic} {
		settings, ok := r.providers.ProviderFor(string(name))
		if !ok || settings.APIKey == "" {
			continue
		}
		_, _ = r.Resolve(name)
	}
}
