// Package provider defines the model-provider port (interface) and the
// registry through which adapters are selected.
package provider

import (
	"context"
	"time"

	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
)

// Config carries everything an adapter needs to talk to one provider
// family. It is assembled from process configuration at startup.
type Config struct {
	// APIKey authenticates against the provider's API.
	APIKey string

	// BaseURL overrides the provider's default endpoint. Required for
	// OpenAI-compatible providers that are not OpenAI.
	BaseURL string

	// Models is the supported-model list for this provider. Agent model ids
	// are validated against it at creation and on every update.
	Models []string

	// Timeout bounds every individual provider call.
	Timeout time.Duration

	// RetryAttempts and RetryBaseDelay control retry-on-transient-failure.
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// BreakerMaxFailures and BreakerTimeout configure the circuit breaker
	// guarding this provider's API.
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// MaxContentLength bounds generated document content. When
	// TruncateOverflow is set, oversized content is cut at the bound;
	// otherwise generation fails.
	MaxContentLength int
	TruncateOverflow bool
}

// Provider is the port interface for one model-provider family. All
// operations are idempotent with respect to their inputs except
// GenerateDocument, which may return different content on repeated calls.
type Provider interface {
	// Name returns the provider identifier ("groq", "openai", "anthropic").
	Name() string

	// SupportedModels returns the model ids this provider serves.
	SupportedModels() []string

	// ValidateAgentConfig checks an agent configuration against this
	// provider's constraints before any network interaction. It returns an
	// error wrapping domain.ErrInvalidConfig (or domain.ErrUnsupportedModel)
	// on violation.
	ValidateAgentConfig(req *agent.CreateRequest) error

	// ValidatePrompt runs heuristic plus model-assisted validation of a
	// prompt. It never mutates agent or document state.
	ValidatePrompt(ctx context.Context, prompt string, ag *agent.Agent) (*document.ValidationResult, error)

	// ExtractMetadata derives structured project metadata from a prompt.
	// It returns either fully populated metadata or an error, never a
	// silently partial result.
	ExtractMetadata(ctx context.Context, prompt string, ag *agent.Agent) (*document.ProjectMetadata, error)

	// GenerateDocument produces UTF-8 Markdown content for the given
	// document type, using the extracted metadata and any caller-supplied
	// extra context as generation context. The adapter enforces
	// MaxContentLength.
	GenerateDocument(ctx context.Context, prompt string, docType document.Type, meta *document.ProjectMetadata, extra map[string]string, ag *agent.Agent) (string, error)

	// AnalyzeQuality scores a document and lists issues. Read-only.
	AnalyzeQuality(ctx context.Context, doc *document.Document, ag *agent.Agent) (*document.QualityReport, error)

	// ImprovePrompt rewrites a prompt to yield better generations.
	ImprovePrompt(ctx context.Context, originalPrompt string, ag *agent.Agent) (string, error)
}
