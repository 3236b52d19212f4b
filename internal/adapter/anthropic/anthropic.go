// Package anthropic implements the provider port on top of the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/docsmith/docsmith/internal/adapter/prompt"
	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/provider"
	"github.com/docsmith/docsmith/internal/resilience"
)

// The Messages API caps temperature at 1.0, below the domain-wide bound.
const maxTemperature = 1.0

// Client talks to the Anthropic Messages API.
type Client struct {
	client  anthropic.Client
	cfg     provider.Config
	breaker *resilience.Breaker
}

// New builds an Anthropic provider client.
func New(cfg provider.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic api key is not configured", domain.ErrInvalidConfig)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:  anthropic.NewClient(opts...),
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

func (c *Client) Name() string { return string(agent.ProviderAnthropic) }

func (c *Client) SupportedModels() []string {
	return slices.Clone(c.cfg.Models)
}

func (c *Client) ValidateAgentConfig(req *agent.CreateRequest) error {
	if !slices.Contains(c.cfg.Models, req.ModelID) {
		return fmt.Errorf("%w: %q is not served by anthropic", domain.ErrUnsupportedModel, req.ModelID)
	}
	if req.Temperature > maxTemperature {
		return fmt.Errorf("%w: temperature %.2f exceeds anthropic limit %.1f",
			domain.ErrInvalidConfig, req.Temperature, maxTemperature)
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

func (c *Client) complete(ctx context.Context, system, user string, ag *agent.Agent) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(ag.ModelID),
		MaxTokens: int64(ag.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if ag.Temperature > 0 {
		params.Temperature = anthropic.Float(min(ag.Temperature, maxTemperature))
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

			msg, err := c.client.Messages.New(callCtx, params)
			if err != nil {
				return classify(err)
			}
			content = textContent(msg)
			if content == "" {
				return errors.New("anthropic returned no text content")
			}
			return nil
		})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			// The breaker stays open well past the retry window.
			return resilience.Permanent(fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err))
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	return content, nil
}

// textContent concatenates the text blocks of a response, skipping any
// non-text blocks.
func textContent(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		switch blk := block.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(blk.Text)
		}
	}
	return b.String()
}

func classify(err error) error {
	var apierr *anthropic.Error
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
