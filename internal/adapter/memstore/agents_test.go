package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/port/store"
)

var _ store.AgentStore = (*AgentStore)(nil)

func newAgent(id string) *agent.Agent {
	now := time.Now().UTC()
	return &agent.Agent{
		ID:          id,
		Name:        "agent-" + id,
		Type:        agent.TypeMarkdownGenerator,
		Provider:    agent.ProviderGroq,
		ModelID:     "llama-3.1-8b-instant",
		Temperature: 0.7,
		MaxTokens:   2048,
		Status:      agent.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAgentSaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(10)

	ag := newAgent("a1")
	if err := s.Save(ctx, ag); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "agent-a1" {
		t.Errorf("Name = %q", got.Name)
	}

	// Mutating the returned copy must not touch the stored agent.
	got.Name = "mutated"
	again, _ := s.Get(ctx, "a1")
	if again.Name != "agent-a1" {
		t.Error("store leaked its internal pointer")
	}
}

func TestAgentSaveDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(10)

	if err := s.Save(ctx, newAgent("a1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, newAgent("a1")); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Save error = %v, want ErrConflict", err)
	}
}

func TestAgentGetMissing(t *testing.T) {
	s := NewAgentStore(10)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAgentEvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(2)

	for _, id := range []string{"a1", "a2", "a3"} {
		if err := s.Save(ctx, newAgent(id)); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	if _, err := s.Get(ctx, "a1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("oldest agent should be evicted, got %v", err)
	}
	all, err := s.List(ctx, store.AgentFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != "a2" || all[1].ID != "a3" {
		t.Errorf("unexpected survivors: %+v", all)
	}
}

func TestAgentListFilterAndPagination(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(0)

	for i := range 5 {
		ag := newAgent(fmt.Sprintf("a%d", i))
		if i%2 == 0 {
			ag.Provider = agent.ProviderAnthropic
		}
		if err := s.Save(ctx, ag); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	anth, err := s.List(ctx, store.AgentFilter{Provider: agent.ProviderAnthropic}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(anth) != 3 {
		t.Errorf("filtered count = %d, want 3", len(anth))
	}

	page, err := s.List(ctx, store.AgentFilter{}, 2, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].ID != "a1" || page[1].ID != "a2" {
		t.Errorf("page = %+v", page)
	}

	empty, err := s.List(ctx, store.AgentFilter{}, 10, 99)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("offset past end should be empty, got %d", len(empty))
	}
}

func TestAgentCompareAndSwapStatus(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(10)
	if err := s.Save(ctx, newAgent("a1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.CompareAndSwapStatus(ctx, "a1", agent.StatusActive, agent.StatusBusy)
	if err != nil {
		t.Fatalf("CAS: %v", err)
	}
	if got.Status != agent.StatusBusy {
		t.Errorf("status = %q, want busy", got.Status)
	}

	if _, err := s.CompareAndSwapStatus(ctx, "a1", agent.StatusActive, agent.StatusBusy); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second CAS error = %v, want ErrConflict", err)
	}
	if _, err := s.CompareAndSwapStatus(ctx, "missing", agent.StatusActive, agent.StatusBusy); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing CAS error = %v, want ErrNotFound", err)
	}
}

func TestAgentCompareAndSwapStatusSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(10)
	if err := s.Save(ctx, newAgent("a1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CompareAndSwapStatus(ctx, "a1", agent.StatusActive, agent.StatusBusy); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
}

func TestAgentDelete(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(10)
	if err := s.Save(ctx, newAgent("a1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ok, err := s.Delete(ctx, "a1")
	if err != nil || !ok {
		t.Fatalf("Delete = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = s.Delete(ctx, "a1")
	if err != nil || ok {
		t.Fatalf("second Delete = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestAgentStats(t *testing.T) {
	ctx := context.Background()
	s := NewAgentStore(10)

	a1 := newAgent("a1")
	a2 := newAgent("a2")
	a2.Status = agent.StatusBusy
	a2.Type = agent.TypeProjectPlanner
	for _, ag := range []*agent.Agent{a1, a2} {
		if err := s.Save(ctx, ag); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Total = %d", stats.Total)
	}
	if stats.ByStatus["active"] != 1 || stats.ByStatus["busy"] != 1 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
	if stats.ByType["markdown_generator"] != 1 || stats.ByType["project_planner"] != 1 {
		t.Errorf("ByType = %v", stats.ByType)
	}
}
