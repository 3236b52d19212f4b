// Package memstore provides in-memory implementations of the store ports.
// Both stores keep insertion order for listing and evict the oldest entry
// when the configured capacity is reached.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/port/store"
)

// AgentStore is a map-backed agent store safe for concurrent use.
type AgentStore struct {
	mu       sync.RWMutex
	agents   map[string]*agent.Agent
	order    []string
	capacity int
}

// NewAgentStore creates an agent store bounded at capacity entries.
// capacity <= 0 means unbounded.
func NewAgentStore(capacity int) *AgentStore {
	return &AgentStore{
		agents:   make(map[string]*agent.Agent),
		capacity: capacity,
	}
}

func (s *AgentStore) Save(ctx context.Context, ag *agent.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[ag.ID]; exists {
		return fmt.Errorf("%w: agent %s already exists", domain.ErrConflict, ag.ID)
	}
	if s.capacity > 0 && len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.agents, oldest)
	}

	s.agents[ag.ID] = cloneAgent(ag)
	s.order = append(s.order, ag.ID)
	return nil
}

func (s *AgentStore) Get(ctx context.Context, id string) (*agent.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ag, ok := s.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: agent %s", domain.ErrNotFound, id)
	}
	return cloneAgent(ag), nil
}

func (s *AgentStore) List(ctx context.Context, filter store.AgentFilter, limit, offset int) ([]agent.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]agent.Agent, 0, len(s.order))
	for _, id := range s.order {
		ag := s.agents[id]
		if filter.Type != "" && ag.Type != filter.Type {
			continue
		}
		if filter.Provider != "" && ag.Provider != filter.Provider {
			continue
		}
		if filter.Status != "" && ag.Status != filter.Status {
			continue
		}
		matched = append(matched, *cloneAgent(ag))
	}
	return paginate(matched, limit, offset), nil
}

func (s *AgentStore) Update(ctx context.Context, ag *agent.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[ag.ID]; !ok {
		return fmt.Errorf("%w: agent %s", domain.ErrNotFound, ag.ID)
	}
	s.agents[ag.ID] = cloneAgent(ag)
	return nil
}

func (s *AgentStore) CompareAndSwapStatus(ctx context.Context, id string, from, to agent.Status) (*agent.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ag, ok := s.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: agent %s", domain.ErrNotFound, id)
	}
	if ag.Status != from {
		return nil, fmt.Errorf("%w: agent %s is %s, expected %s", domain.ErrConflict, id, ag.Status, from)
	}
	ag.Status = to
	ag.Touch()
	return cloneAgent(ag), nil
}

func (s *AgentStore) SetStatus(ctx context.Context, id string, status agent.Status) (*agent.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ag, ok := s.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: agent %s", domain.ErrNotFound, id)
	}
	ag.Status = status
	ag.Touch()
	return cloneAgent(ag), nil
}

func (s *AgentStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return false, nil
	}
	delete(s.agents, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *AgentStore) Stats(ctx context.Context) (*store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &store.Stats{
		Total:    len(s.agents),
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
	for _, ag := range s.agents {
		stats.ByStatus[string(ag.Status)]++
		stats.ByType[string(ag.Type)]++
	}
	return stats, nil
}

// cloneAgent copies an agent including its instruction slice, so callers
// never share backing arrays with the store.
func cloneAgent(ag *agent.Agent) *agent.Agent {
	cp := *ag
	if ag.Instructions != nil {
		cp.Instructions = make([]string, len(ag.Instructions))
		copy(cp.Instructions, ag.Instructions)
	}
	return &cp
}

// paginate applies limit/offset the way the SQL store's LIMIT/OFFSET does.
// limit <= 0 means no limit.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
