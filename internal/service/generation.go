package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsmith/docsmith/internal/adapter/otel"
	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/cache"
	"github.com/docsmith/docsmith/internal/port/messagequeue"
	"github.com/docsmith/docsmith/internal/port/provider"
	"github.com/docsmith/docsmith/internal/port/store"
)

// needsReviewTag marks documents whose quality score fell below the
// configured threshold.
const needsReviewTag = "needs-review"

// GenerateRequest carries the caller-supplied fields for one generation.
// ProjectName overrides the title derived from extracted metadata, and
// AdditionalContext is folded into the generation prompt verbatim.
type GenerateRequest struct {
	AgentID           string            `json:"agent_id"`
	Prompt            string            `json:"prompt"`
	ProjectName       string            `json:"project_name,omitempty"`
	AdditionalContext map[string]string `json:"additional_context,omitempty"`
	Type              document.Type     `json:"document_type"`
}

// Validate checks the request fields that need no store access.
func (r *GenerateRequest) Validate() error {
	if strings.TrimSpace(r.AgentID) == "" {
		return fmt.Errorf("%w: agent_id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}
	if !document.ValidType(r.Type) {
		return fmt.Errorf("%w: unknown document type %q", domain.ErrValidation, r.Type)
	}
	return nil
}

// GenerationService runs the generation pipeline and the standalone prompt
// operations.
type GenerationService struct {
	agents   store.AgentStore
	docs     store.DocumentStore
	res      ProviderResolver
	cache    cache.Cache
	queue    messagequeue.Publisher
	cfg      config.Generation
	cacheTTL time.Duration
	metrics  *otel.Metrics
	log      *slog.Logger
}

// NewGenerationService creates a GenerationService. cache, queue, and
// metrics may each be nil to disable the corresponding concern.
func NewGenerationService(
	agents store.AgentStore,
	docs store.DocumentStore,
	res ProviderResolver,
	c cache.Cache,
	queue messagequeue.Publisher,
	cfg config.Generation,
	cacheTTL time.Duration,
	metrics *otel.Metrics,
	log *slog.Logger,
) *GenerationService {
	return &GenerationService{
		agents: agents, docs: docs, res: res, cache: c, queue: queue,
		cfg: cfg, cacheTTL: cacheTTL, metrics: metrics, log: log,
	}
}

// Generate runs the full pipeline: acquire the agent, validate the prompt,
// extract metadata, generate content, and persist the outcome. Exactly one
// generation is in flight per agent id; concurrent callers get ErrAgentBusy.
// A provider failure after acquisition persists a document in status failed.
func (s *GenerationService) Generate(ctx context.Context, req *GenerateRequest) (*document.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ag, err := s.acquire(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}
	// Release must happen even when the caller's context is already gone.
	defer s.release(context.WithoutCancel(ctx), ag.ID)

	ctx, span := otel.StartGenerationSpan(ctx, ag.ID, string(req.Type))
	defer span.End()

	start := time.Now()
	if s.metrics != nil {
		s.metrics.GenerationsStarted.Add(ctx, 1)
	}

	doc, err := s.run(ctx, req, ag)
	if s.metrics != nil {
		s.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds())
		switch {
		case err == nil:
			s.metrics.GenerationsCompleted.Add(ctx, 1)
			s.metrics.DocumentWords.Record(ctx, int64(doc.WordCount))
		case doc != nil:
			s.metrics.GenerationsFailed.Add(ctx, 1)
		default:
			s.metrics.GenerationsRejected.Add(ctx, 1)
		}
	}
	return doc, err
}

// acquire CAS-transitions the agent active -> busy. It maps a lost race to
// ErrAgentBusy and any other non-active status to a validation error.
func (s *GenerationService) acquire(ctx context.Context, agentID string) (*agent.Agent, error) {
	ag, err := s.agents.CompareAndSwapStatus(ctx, agentID, agent.StatusActive, agent.StatusBusy)
	if err == nil {
		publishEvent(ctx, s.queue, s.log, messagequeue.SubjectAgentStatus, agentStatusEvent{
			AgentID: ag.ID, Status: string(agent.StatusBusy), Timestamp: ag.UpdatedAt,
		})
		return ag, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}

	current, getErr := s.agents.Get(ctx, agentID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == agent.StatusBusy {
		return nil, fmt.Errorf("%w: agent %s has a generation in flight", domain.ErrAgentBusy, agentID)
	}
	return nil, fmt.Errorf("%w: agent %s is %s, expected %s",
		domain.ErrValidation, agentID, current.Status, agent.StatusActive)
}

func (s *GenerationService) release(ctx context.Context, agentID string) {
	ag, err := s.agents.SetStatus(ctx, agentID, agent.StatusActive)
	if err != nil {
		s.log.Error("release agent", "agent_id", agentID, "error", err)
		return
	}
	publishEvent(ctx, s.queue, s.log, messagequeue.SubjectAgentStatus, agentStatusEvent{
		AgentID: agentID, Status: string(agent.StatusActive), Timestamp: ag.UpdatedAt,
	})
}

// run executes the pipeline while the agent is held. When it returns a
// non-nil document together with an error, the document was persisted in
// status failed.
func (s *GenerationService) run(ctx context.Context, req *GenerateRequest, ag *agent.Agent) (*document.Document, error) {
	p, err := s.res.Resolve(ag.Provider)
	if err != nil {
		return nil, err
	}

	prompt := req.Prompt
	vr, err := s.validate(ctx, p, prompt, ag)
	if err != nil {
		return nil, err
	}
	if !vr.IsValid {
		return nil, fmt.Errorf("%w: prompt rejected: %s",
			domain.ErrValidation, strings.Join(vr.Issues, "; "))
	}
	if s.cfg.AutoImprovePrompts && vr.ConfidenceScore < s.cfg.QualityThreshold {
		if improved, impErr := p.ImprovePrompt(ctx, prompt, ag); impErr == nil && strings.TrimSpace(improved) != "" {
			s.log.Debug("prompt auto-improved", "agent_id", ag.ID)
			prompt = improved
		}
	}

	meta, err := s.extract(ctx, p, prompt, ag)
	if err != nil {
		// Metadata enriches the generation prompt but is not required.
		s.log.Warn("metadata extraction failed", "agent_id", ag.ID, "error", err)
		meta = nil
	}

	doc, err := s.createDraft(ctx, req, ag, meta)
	if err != nil {
		return nil, err
	}

	doc.Status = document.StatusInProgress
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}
	s.publishDocStatus(ctx, doc)

	content, genErr := p.GenerateDocument(ctx, prompt, req.Type, meta, req.AdditionalContext, ag)
	if genErr != nil {
		doc.Status = document.StatusFailed
		doc.UpdatedAt = time.Now().UTC()
		if updErr := s.docs.Update(ctx, doc); updErr != nil {
			s.log.Error("persist failed document", "document_id", doc.ID, "error", updErr)
		}
		s.publishDocStatus(ctx, doc)
		return doc, fmt.Errorf("generate document: %w", genErr)
	}

	doc.SetContent(content)
	doc.Status = document.StatusCompleted
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}
	s.publishDocStatus(ctx, doc)
	s.log.Info("document generated",
		"document_id", doc.ID, "agent_id", ag.ID, "type", doc.Type, "words", doc.WordCount)

	s.reviewQuality(ctx, p, doc, ag)
	return doc, nil
}

func (s *GenerationService) createDraft(ctx context.Context, req *GenerateRequest, ag *agent.Agent, meta *document.ProjectMetadata) (*document.Document, error) {
	title := strings.TrimSpace(req.ProjectName)
	if title == "" && meta != nil && meta.ProjectName != "" {
		title = meta.ProjectName
	}
	if title == "" {
		title = string(req.Type)
	}

	now := time.Now().UTC()
	doc := &document.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Type:      req.Type,
		Status:    document.StatusDraft,
		AgentID:   ag.ID,
		Version:   "1.0",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// reviewQuality scores the finished document and tags it for review when it
// falls below the threshold. Failures are logged and swallowed; the
// document is already complete.
func (s *GenerationService) reviewQuality(ctx context.Context, p provider.Provider, doc *document.Document, ag *agent.Agent) {
	report, err := p.AnalyzeQuality(ctx, doc, ag)
	if err != nil {
		s.log.Warn("quality analysis failed", "document_id", doc.ID, "error", err)
		return
	}
	if report.QualityScore >= s.cfg.QualityThreshold {
		return
	}
	doc.AddTag(needsReviewTag)
	if err := s.docs.Update(ctx, doc); err != nil {
		s.log.Error("tag document", "document_id", doc.ID, "error", err)
	}
	s.log.Info("document flagged for review",
		"document_id", doc.ID, "score", report.QualityScore, "issues", len(report.Issues))
}

func (s *GenerationService) publishDocStatus(ctx context.Context, doc *document.Document) {
	publishEvent(ctx, s.queue, s.log, messagequeue.SubjectDocumentStatus, documentStatusEvent{
		DocumentID: doc.ID, AgentID: doc.AgentID, Status: string(doc.Status), Timestamp: doc.UpdatedAt,
	})
}

// ValidatePrompt runs prompt validation through the given agent's provider,
// consulting the result cache first.
func (s *GenerationService) ValidatePrompt(ctx context.Context, agentID, prompt string) (*document.ValidationResult, error) {
	ag, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	p, err := s.res.Resolve(ag.Provider)
	if err != nil {
		return nil, err
	}

	return s.validate(ctx, p, prompt, ag)
}

// ExtractMetadata derives project metadata from a prompt through the given
// agent's provider, consulting the result cache first.
func (s *GenerationService) ExtractMetadata(ctx context.Context, agentID, prompt string) (*document.ProjectMetadata, error) {
	ag, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	p, err := s.res.Resolve(ag.Provider)
	if err != nil {
		return nil, err
	}

	return s.extract(ctx, p, prompt, ag)
}

// ImprovePrompt rewrites a prompt through the given agent's provider.
// Results are never cached; callers expect a fresh rewrite.
func (s *GenerationService) ImprovePrompt(ctx context.Context, agentID, prompt string) (string, error) {
	ag, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return "", err
	}
	p, err := s.res.Resolve(ag.Provider)
	if err != nil {
		return "", err
	}
	return p.ImprovePrompt(ctx, prompt, ag)
}

// AnalyzeQuality scores an existing document using its generating agent.
func (s *GenerationService) AnalyzeQuality(ctx context.Context, documentID string) (*document.QualityReport, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.AgentID == "" {
		return nil, fmt.Errorf("%w: document %s has no generating agent", domain.ErrValidation, documentID)
	}
	ag, err := s.agents.Get(ctx, doc.AgentID)
	if err != nil {
		return nil, fmt.Errorf("generating agent: %w", err)
	}
	p, err := s.res.Resolve(ag.Provider)
	if err != nil {
		return nil, err
	}
	return p.AnalyzeQuality(ctx, doc, ag)
}

func (s *GenerationService) validate(ctx context.Context, p provider.Provider, prompt string, ag *agent.Agent) (*document.ValidationResult, error) {
	key := cacheKey("validate", ag.ModelID, prompt)
	var cached document.ValidationResult
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	vr, err := p.ValidatePrompt(ctx, prompt, ag)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, vr)
	return vr, nil
}

func (s *GenerationService) extract(ctx context.Context, p provider.Provider, prompt string, ag *agent.Agent) (*document.ProjectMetadata, error) {
	key := cacheKey("metadata", ag.ModelID, prompt)
	var cached document.ProjectMetadata
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	meta, err := p.ExtractMetadata(ctx, prompt, ag)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, meta)
	return meta, nil
}

func cacheKey(op, model, prompt string) string {
	sum := sha256.Sum256([]byte(op + "\x00" + model + "\x00" + prompt))
	return op + ":" + hex.EncodeToString(sum[:])
}

func (s *GenerationService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *GenerationService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.Debug("cache set failed", "key", key, "error", err)
	}
}
