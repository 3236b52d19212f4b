package openaicompat

import (
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/port/provider"
)

func init() {
	provider.Register(agent.ProviderOpenAI, func(cfg provider.Config) (provider.Provider, error) {
		return New(agent.ProviderOpenAI, cfg)
	})
	provider.Register(agent.ProviderGroq, func(cfg provider.Config) (provider.Provider, error) {
		return New(agent.ProviderGroq, cfg)
	})
}
