// Package openaicompat implements the provider port on top of any
// OpenAI-compatible Chat Completions API. It serves both OpenAI itself and
// Groq, which exposes the same wire surface under a different base URL.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/docsmith/docsmith/internal/adapter/prompt"
	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/provider"
	"github.com/docsmith/docsmith/internal/resilience"
)

// Groq rejects requests above this completion budget regardless of model.
const groqMaxTokens = 8192

// Client talks to one OpenAI-compatible endpoint.
type Client struct {
	name    agent.Provider
	client  openai.Client
	cfg     provider.Config
	breaker *resilience.Breaker
}

// New builds a Client for the named provider family.
func New(name agent.Provider, cfg provider.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s api key is not configured", domain.ErrInvalidConfig, name)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		name:    name,
		client:  openai.NewClient(opts...),
		cfg:     cfg,
		breaker: newBreaker(cfg),
	}, nil
}

func newBreaker(cfg provider.Config) *resilience.Breaker {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return resilience.NewBreaker(maxFailures, timeout)
}

func (c *Client) Name() string { return string(c.name) }

func (c *Client) SupportedModels() []string {
	return slices.Clone(c.cfg.Models)
}

func (c *Client) ValidateAgentConfig(req *agent.CreateRequest) error {
	if !slices.Contains(c.cfg.Models, req.ModelID) {
		return fmt.Errorf("%w: %q is not served by %s", domain.ErrUnsupportedModel, req.ModelID, c.name)
	}
	if c.name == agent.ProviderGroq && req.MaxTokens > groqMaxTokens {
		return fmt.Errorf("%w: max_tokens %d exceeds groq limit %d",
			domain.ErrInvalidConfig, req.MaxTokens, groqMaxTokens)
	}
	return nil
}

func (c *Client) ValidatePrompt(ctx context.Context, userPrompt string, ag *agent.Agent) (*document.ValidationResult, error) {
	if hr := prompt.Heuristic(userPrompt); !hr.IsValid {
		return hr, nil
	}
	raw, err := c.complete(ctx, prompt.ValidationSystem, prompt.Validation(userPrompt), ag)
	if err != nil {
		return nil, err
	}
	return prompt.ParseValidation(raw), nil
}

func (c *Client) ExtractMetadata(ctx context.Context, userPrompt string, ag *agent.Agent) (*document.ProjectMetadata, error) {
	raw, err := c.complete(ctx, prompt.MetadataSystem, prompt.Metadata(userPrompt), ag)
	if err != nil {
		return nil, err
	}
	return prompt.ParseMetadata(raw)
}

func (c *Client) GenerateDocument(ctx context.Context, userPrompt string, docType document.Type, meta *document.ProjectMetadata, extra map[string]string, ag *agent.Agent) (string, error) {
	raw, err := c.complete(ctx, prompt.GenerationSystem, prompt.Generation(userPrompt, docType, meta, extra, ag), ag)
	if err != nil {
		return "", err
	}
	return prompt.CheckLength(raw, c.cfg.MaxContentLength, c.cfg.TruncateOverflow)
}

func (c *Client) AnalyzeQuality(ctx context.Context, doc *document.Document, ag *agent.Agent) (*document.QualityReport, error) {
	raw, err := c.complete(ctx, prompt.QualitySystem, prompt.Quality(doc), ag)
	if err != nil {
		return nil, err
	}
	return prompt.ParseQuality(raw)
}

func (c *Client) ImprovePrompt(ctx context.Context, originalPrompt string, ag *agent.Agent) (string, error) {
	return c.complete(ctx, prompt.ImproveSystem, prompt.Improve(originalPrompt), ag)
}

// complete performs one chat completion with per-call timeout, circuit
// breaking, and retry on transient failures.
func (c *Client) complete(ctx context.Context, system, user string, ag *agent.Agent) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(ag.ModelID),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(ag.Temperature),
		MaxTokens:   openai.Int(int64(ag.MaxTokens)),
	}

	var content string
	err := resilience.Retry(ctx, c.cfg.RetryAttempts, c.cfg.RetryBaseDelay, func() error {
		err := c.breaker.Execute(func() error {
			callCtx := ctx
			if c.cfg.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
				defer cancel()
			}

			resp, err := c.client.Chat.Completions.New(callCtx, params)
			if err != nil {
				return c.classify(err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("%s returned no choices", c.name)
			}
			content = resp.Choices[0].Message.Content
			return nil
		})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			// The breaker stays open well past the retry window.
			return resilience.Permanent(fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err))
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.name, err)
	}
	return content, nil
}

// classify decides whether a failed call is worth retrying. Rate limits,
// server errors, and network-level failures are transient; everything else
// is surfaced immediately as a provider-unavailable condition.
func (c *Client) classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests,
			apierr.StatusCode == http.StatusRequestTimeout,
			apierr.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		default:
			return resilience.Permanent(fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err))
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if errors.Is(err, context.Canceled) {
		return resilience.Permanent(err)
	}
	return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
}
