// Package store defines the entity store ports (interfaces).
package store

import (
	"context"

	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
)

// AgentFilter holds equality predicates for agent listing. Zero values
// match everything.
type AgentFilter struct {
	Type     agent.Type
	Provider agent.Provider
	Status   agent.Status
}

// DocumentFilter holds equality predicates for document listing.
type DocumentFilter struct {
	Type   document.Type
	Status document.Status
}

// Stats summarizes a store's contents for the stats endpoints.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByType   map[string]int `json:"by_type"`
}

// AgentStore is the port interface for agent persistence. Listing is in
// insertion order, stable under updates. Implementations document their
// capacity policy: the in-memory store evicts the oldest agent when the
// bound is reached; the Postgres store rejects with domain.ErrCapacityExceeded.
type AgentStore interface {
	Save(ctx context.Context, ag *agent.Agent) error
	Get(ctx context.Context, id string) (*agent.Agent, error)
	List(ctx context.Context, filter AgentFilter, limit, offset int) ([]agent.Agent, error)
	Update(ctx context.Context, ag *agent.Agent) error

	// CompareAndSwapStatus atomically transitions the agent's status from
	// "from" to "to". It returns domain.ErrConflict when the current status
	// is not "from", and domain.ErrNotFound when the agent does not exist.
	// This is the serialization point for the single-flight generation
	// guarantee; no provider I/O ever happens under the store's lock.
	CompareAndSwapStatus(ctx context.Context, id string, from, to agent.Status) (*agent.Agent, error)

	// SetStatus unconditionally writes a status (caller validates the
	// transition).
	SetStatus(ctx context.Context, id string, status agent.Status) (*agent.Agent, error)

	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
}

// DocumentStore is the port interface for document persistence.
type DocumentStore interface {
	Save(ctx context.Context, doc *document.Document) error
	Get(ctx context.Context, id string) (*document.Document, error)
	List(ctx context.Context, filter DocumentFilter, limit, offset int) ([]document.Document, error)
	Update(ctx context.Context, doc *document.Document) error
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
}
