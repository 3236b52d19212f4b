package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/port/messagequeue"
	"github.com/docsmith/docsmith/internal/port/store"
)

// defaultInstructions seeds new agents of each type with a working
// instruction set when the caller provides none.
var defaultInstructions = map[agent.Type][]string{
	agent.TypeMarkdownGenerator: {
		"Produce clean, well-structured Markdown.",
		"Use headings, lists, and code blocks where they aid readability.",
	},
	agent.TypeCodeAnalyzer: {
		"Analyze architecture and technology choices before writing.",
		"Call out risks and trade-offs explicitly.",
	},
	agent.TypeProjectPlanner: {
		"Break work into phases with clear milestones.",
		"Estimate effort conservatively.",
	},
	agent.TypeDocumentWriter: {
		"Write for the document's stated audience.",
		"Prefer concrete examples over abstract description.",
	},
	agent.TypeMVPSpecialist: {
		"Focus on the minimum feature set that validates the idea.",
		"Defer everything that is not essential to a later phase.",
	},
}

// AgentService handles agent lifecycle.
type AgentService struct {
	store    store.AgentStore
	resolver ProviderResolver
	queue    messagequeue.Publisher
	log      *slog.Logger
}

// NewAgentService creates a new AgentService. queue may be nil to disable
// event publishing.
func NewAgentService(st store.AgentStore, resolver ProviderResolver, queue messagequeue.Publisher, log *slog.Logger) *AgentService {
	return &AgentService{store: st, resolver: resolver, queue: queue, log: log}
}

// Create validates the request against domain invariants and the target
// provider's constraints, then persists the new agent.
func (s *AgentService) Create(ctx context.Context, req *agent.CreateRequest) (*agent.Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.resolver.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}
	if err := p.ValidateAgentConfig(req); err != nil {
		return nil, err
	}

	instructions := req.Instructions
	if len(instructions) == 0 {
		instructions = defaultInstructions[req.Type]
	}
	status := req.Status
	if status == "" {
		status = agent.StatusInactive
	}

	now := time.Now().UTC()
	ag := &agent.Agent{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Provider:     req.Provider,
		ModelID:      req.ModelID,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		Instructions: instructions,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Save(ctx, ag); err != nil {
		return nil, err
	}

	s.log.Info("agent created", "agent_id", ag.ID, "provider", ag.Provider, "model", ag.ModelID)
	publishEvent(ctx, s.queue, s.log, messagequeue.SubjectAgentStatus, agentStatusEvent{
		AgentID: ag.ID, Status: string(ag.Status), Timestamp: now,
	})
	return ag, nil
}

// Get returns an agent by ID.
func (s *AgentService) Get(ctx context.Context, id string) (*agent.Agent, error) {
	return s.store.Get(ctx, id)
}

// List returns agents matching the filter, in insertion order.
func (s *AgentService) List(ctx context.Context, filter store.AgentFilter, limit, offset int) ([]agent.Agent, error) {
	return s.store.List(ctx, filter, limit, offset)
}

// Update replaces the mutable fields of an existing agent after running the
// same validation chain as Create.
func (s *AgentService) Update(ctx context.Context, id string, req *agent.CreateRequest) (*agent.Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.resolver.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}
	if err := p.ValidateAgentConfig(req); err != nil {
		return nil, err
	}

	ag, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ag.Status == agent.StatusBusy {
		return nil, fmt.Errorf("%w: cannot reconfigure agent %s mid-generation", domain.ErrAgentBusy, id)
	}

	ag.Name = req.Name
	ag.Description = req.Description
	ag.Type = req.Type
	ag.Provider = req.Provider
	ag.ModelID = req.ModelID
	ag.Temperature = req.Temperature
	ag.MaxTokens = req.MaxTokens
	if len(req.Instructions) > 0 {
		ag.Instructions = req.Instructions
	}
	ag.Touch()

	if err := s.store.Update(ctx, ag); err != nil {
		return nil, err
	}
	return ag, nil
}

// UpdateStatus transitions an agent's status, enforcing the agent state
// machine.
func (s *AgentService) UpdateStatus(ctx context.Context, id string, to agent.Status) (*agent.Agent, error) {
	if !agent.ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
	}

	ag, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !agent.CanTransition(ag.Status, to) {
		return nil, fmt.Errorf("%w: cannot transition agent from %s to %s",
			domain.ErrValidation, ag.Status, to)
	}

	// CAS against the observed status so a concurrent transition cannot be
	// silently overwritten.
	updated, err := s.store.CompareAndSwapStatus(ctx, id, ag.Status, to)
	if err != nil {
		return nil, err
	}

	s.log.Info("agent status changed", "agent_id", id, "from", ag.Status, "to", to)
	publishEvent(ctx, s.queue, s.log, messagequeue.SubjectAgentStatus, agentStatusEvent{
		AgentID: id, Status: string(to), Timestamp: updated.UpdatedAt,
	})
	return updated, nil
}

// Delete removes an agent. Documents the agent generated survive with a
// dangling generating_agent_id.
func (s *AgentService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: agent %s", domain.ErrNotFound, id)
	}
	s.log.Info("agent deleted", "agent_id", id)
	return nil
}

// Stats summarizes the agent population.
func (s *AgentService) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}
