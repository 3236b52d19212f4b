package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/store"
)

// DocumentStore implements the document store port using PostgreSQL.
type DocumentStore struct {
	pool     *pgxpool.Pool
	capacity int
}

// NewDocumentStore creates a DocumentStore bounded at capacity rows.
// capacity <= 0 disables the bound.
func NewDocumentStore(pool *pgxpool.Pool, capacity int) *DocumentStore {
	return &DocumentStore{pool: pool, capacity: capacity}
}

const documentColumns = `id, title, content, document_type, status, word_count,
	agent_id, tags, version, created_at, updated_at`

func scanDocument(row scannable) (*document.Document, error) {
	var doc document.Document
	var typ, status string
	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Content, &typ, &status, &doc.WordCount,
		&doc.AgentID, &doc.Tags, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Type = document.Type(typ)
	doc.Status = document.Status(status)
	return &doc, nil
}

func (s *DocumentStore) Save(ctx context.Context, doc *document.Document) error {
	if err := checkCapacity(ctx, s.pool, "documents", s.capacity); err != nil {
		return err
	}

	const q = `
		INSERT INTO documents (id, title, content, document_type, status, word_count,
			agent_id, tags, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.pool.Exec(ctx, q,
		doc.ID, doc.Title, doc.Content, string(doc.Type), string(doc.Status),
		doc.WordCount, doc.AgentID, pgTextArray(doc.Tags), doc.Version,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("save document %s: %w", doc.ID, domain.ErrConflict)
		}
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, id string) (*document.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

func (s *DocumentStore) List(ctx context.Context, filter store.DocumentFilter, limit, offset int) ([]document.Document, error) {
	var conds []string
	var args []any
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("document_type", string(filter.Type))
	add("status", string(filter.Status))

	q := `SELECT ` + documentColumns + ` FROM documents`
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
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	result := []document.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		result = append(result, *doc)
	}
	return result, rows.Err()
}

func (s *DocumentStore) Update(ctx context.Context, doc *document.Document) error {
	const q = `
		UPDATE documents
		SET title = $2, content = $3, document_type = $4, status = $5,
			word_count = $6, tags = $7, version = $8, updated_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q,
		doc.ID, doc.Title, doc.Content, string(doc.Type), string(doc.Status),
		doc.WordCount, pgTextArray(doc.Tags), doc.Version,
	)
	if err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update document %s: %w", doc.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *DocumentStore) Stats(ctx context.Context) (*store.Stats, error) {
	return tableStats(ctx, s.pool, "documents", "document_type")
}
