package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/messagequeue"
	"github.com/docsmith/docsmith/internal/port/store"
)

// DocumentService handles document retrieval and lifecycle after
// generation.
type DocumentService struct {
	store store.DocumentStore
	queue messagequeue.Publisher
	log   *slog.Logger
}

// NewDocumentService creates a new DocumentService. queue may be nil to
// disable event publishing.
func NewDocumentService(st store.DocumentStore, queue messagequeue.Publisher, log *slog.Logger) *DocumentService {
	return &DocumentService{store: st, queue: queue, log: log}
}

// Get returns a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*document.Document, error) {
	return s.store.Get(ctx, id)
}

// List returns documents matching the filter, in insertion order.
func (s *DocumentService) List(ctx context.Context, filter store.DocumentFilter, limit, offset int) ([]document.Document, error) {
	return s.store.List(ctx, filter, limit, offset)
}

// UpdateStatus moves a document through its review lifecycle
// (completed -> reviewing -> published), enforcing the document state
// machine.
func (s *DocumentService) UpdateStatus(ctx context.Context, id string, to document.Status) (*document.Document, error) {
	if !document.ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
	}

	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !document.CanTransition(doc.Status, to) {
		return nil, fmt.Errorf("%w: cannot transition document from %s to %s",
			domain.ErrValidation, doc.Status, to)
	}

	doc.Status = to
	doc.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.log.Info("document status changed", "document_id", id, "to", to)
	publishEvent(ctx, s.queue, s.log, messagequeue.SubjectDocumentStatus, documentStatusEvent{
		DocumentID: id, AgentID: doc.AgentID, Status: string(to), Timestamp: doc.UpdatedAt,
	})
	return doc, nil
}

// AddTags appends tags to a document, skipping duplicates.
func (s *DocumentService) AddTags(ctx context.Context, id string, tags []string) (*document.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		doc.AddTag(tag)
	}
	if err := s.store.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	s.log.Info("document deleted", "document_id", id)
	return nil
}

// Stats summarizes the document population.
func (s *DocumentService) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}
