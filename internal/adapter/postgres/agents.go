package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/port/store"
)

// AgentStore implements the agent store port using PostgreSQL.
type AgentStore struct {
	pool     *pgxpool.Pool
	capacity int
}

// NewAgentStore creates an AgentStore bounded at capacity rows.
// capacity <= 0 disables the bound.
func NewAgentStore(pool *pgxpool.Pool, capacity int) *AgentStore {
	return &AgentStore{pool: pool, capacity: capacity}
}

const agentColumns = `id, name, description, agent_type, provider, model_id,
	temperature, max_tokens, instructions, status, created_at, updated_at`

func scanAgent(row scannable) (*agent.Agent, error) {
	var ag agent.Agent
	var typ, prov, status string
	err := row.Scan(
		&ag.ID, &ag.Name, &ag.Description, &typ, &prov, &ag.ModelID,
		&ag.Temperature, &ag.MaxTokens, &ag.Instructions, &status,
		&ag.CreatedAt, &ag.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ag.Type = agent.Type(typ)
	ag.Provider = agent.Provider(prov)
	ag.Status = agent.Status(status)
	return &ag, nil
}

func (s *AgentStore) Save(ctx context.Context, ag *agent.Agent) error {
	if err := checkCapacity(ctx, s.pool, "agents", s.capacity); err != nil {
		return err
	}

	const q = `
		INSERT INTO agents (id, name, description, agent_type, provider, model_id,
			temperature, max_tokens, instructions, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, q,
		ag.ID, ag.Name, ag.Description, string(ag.Type), string(ag.Provider),
		ag.ModelID, ag.Temperature, ag.MaxTokens, pgTextArray(ag.Instructions),
		string(ag.Status), ag.CreatedAt, ag.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("save agent %s: %w", ag.ID, domain.ErrConflict)
		}
		return fmt.Errorf("save agent %s: %w", ag.ID, err)
	}
	return nil
}

func (s *AgentStore) Get(ctx context.Context, id string) (*agent.Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`

	ag, err := scanAgent(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get agent %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get agent %s: %w", id, err)
	}
	return ag, nil
}

func (s *AgentStore) List(ctx context.Context, filter store.AgentFilter, limit, offset int) ([]agent.Agent, error) {
	var conds []string
	var args []any
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("agent_type", string(filter.Type))
	add("provider", string(filter.Provider))
	add("status", string(filter.Status))

	q := `SELECT ` + agentColumns + ` FROM agents`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at ASC, id ASC"
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	result := []agent.Agent{}
	for rows.Next() {
		ag, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		result = append(result, *ag)
	}
	return result, rows.Err()
}

func (s *AgentStore) Update(ctx context.Context, ag *agent.Agent) error {
	const q = `
		UPDATE agents
		SET name = $2, description = $3, agent_type = $4, provider = $5,
			model_id = $6, temperature = $7, max_tokens = $8, instructions = $9,
			status = $10, updated_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q,
		ag.ID, ag.Name, ag.Description, string(ag.Type), string(ag.Provider),
		ag.ModelID, ag.Temperature, ag.MaxTokens, pgTextArray(ag.Instructions),
		string(ag.Status),
	)
	if err != nil {
		return fmt.Errorf("update agent %s: %w", ag.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update agent %s: %w", ag.ID, domain.ErrNotFound)
	}
	return nil
}

// CompareAndSwapStatus relies on the conditional UPDATE being atomic; the
// database serializes concurrent swaps, so exactly one caller wins.
func (s *AgentStore) CompareAndSwapStatus(ctx context.Context, id string, from, to agent.Status) (*agent.Agent, error) {
	q := `
		UPDATE agents SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + agentColumns

	ag, err := scanAgent(s.pool.QueryRow(ctx, q, id, string(from), string(to)))
	if err == nil {
		return ag, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cas agent %s: %w", id, err)
	}

	// Distinguish a lost race from a missing agent.
	var status string
	err = s.pool.QueryRow(ctx, `SELECT status FROM agents WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cas agent %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cas agent %s: %w", id, err)
	}
	return nil, fmt.Errorf("%w: agent %s is %s, expected %s", domain.ErrConflict, id, status, from)
}

func (s *AgentStore) SetStatus(ctx context.Context, id string, status agent.Status) (*agent.Agent, error) {
	q := `
		UPDATE agents SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + agentColumns

	ag, err := scanAgent(s.pool.QueryRow(ctx, q, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("set agent status %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("set agent status %s: %w", id, err)
	}
	return ag, nil
}

func (s *AgentStore) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete agent %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *AgentStore) Stats(ctx context.Context) (*store.Stats, error) {
	return tableStats(ctx, s.pool, "agents", "agent_type")
}
