package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/store"
)

// DocumentStore is a map-backed document store safe for concurrent use.
type DocumentStore struct {
	mu       sync.RWMutex
	docs     map[string]*document.Document
	order    []string
	capacity int
}

// NewDocumentStore creates a document store bounded at capacity entries.
// capacity <= 0 means unbounded.
func NewDocumentStore(capacity int) *DocumentStore {
	return &DocumentStore{
		docs:     make(map[string]*document.Document),
		capacity: capacity,
	}
}

func (s *DocumentStore) Save(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("%w: document %s already exists", domain.ErrConflict, doc.ID)
	}
	if s.capacity > 0 && len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.docs, oldest)
	}

	cp := clone(doc)
	s.docs[doc.ID] = cp
	s.order = append(s.order, doc.ID)
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, id string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return clone(doc), nil
}

func (s *DocumentStore) List(ctx context.Context, filter store.DocumentFilter, limit, offset int) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]document.Document, 0, len(s.order))
	for _, id := range s.order {
		doc := s.docs[id]
		if filter.Type != "" && doc.Type != filter.Type {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		matched = append(matched, *clone(doc))
	}
	return paginate(matched, limit, offset), nil
}

func (s *DocumentStore) Update(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; !ok {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, doc.ID)
	}
	s.docs[doc.ID] = clone(doc)
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *DocumentStore) Stats(ctx context.Context) (*store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &store.Stats{
		Total:    len(s.docs),
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
	for _, doc := range s.docs {
		stats.ByStatus[string(doc.Status)]++
		stats.ByType[string(doc.Type)]++
	}
	return stats, nil
}

// clone copies a document including its tag slice, so callers never share
// backing arrays with the store.
func clone(doc *document.Document) *document.Document {
	cp := *doc
	if doc.Tags != nil {
		cp.Tags = make([]string, len(doc.Tags))
		copy(cp.Tags, doc.Tags)
	}
	return &cp
}
