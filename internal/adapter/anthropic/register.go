package anthropic

import (
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/port/provider"
)

func init() {
	provider.Register(agent.ProviderAnthropic, func(cfg provider.Config) (provider.Provider, error) {
		return New(cfg)
	})
}
