package provider

import (
	"errors"
	"slices"
	"testing"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
)

func TestRegisterAndNew(t *testing.T) {
	name := agent.Provider("test-registry-provider")
	Register(name, func(cfg Config) (Provider, error) {
		return nil, errors.New("factory ran")
	})

	_, err := New(name, Config{})
	if err == nil || err.Error() != "factory ran" {
		t.Fatalf("expected factory to run, got: %v", err)
	}

	if !slices.Contains(Available(), name) {
		t.Errorf("Available() = %v, missing %q", Available(), name)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("never-registered", Config{})
	if !errors.Is(err, domain.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got: %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	name := agent.Provider("test-duplicate-provider")
	Register(name, func(Config) (Provider, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(name, func(Config) (Provider, error) { return nil, nil })
}
