package memstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/store"
)

var _ store.DocumentStore = (*DocumentStore)(nil)

func newDoc(id string) *document.Document {
	now := time.Now().UTC()
	doc := &document.Document{
		ID:        id,
		Title:     "doc-" + id,
		Type:      document.TypeReadme,
		Status:    document.StatusCompleted,
		AgentID:   "a1",
		Version:   "1.0",
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.SetContent("# Title\n\nSome generated content here.")
	return doc
}

func TestDocumentSaveGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(10)

	doc := newDoc("d1")
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.WordCount != 6 {
		t.Errorf("WordCount = %d, want 6", got.WordCount)
	}

	got.SetContent("shorter now")
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := s.Get(ctx, "d1")
	if again.WordCount != 2 {
		t.Errorf("updated WordCount = %d, want 2", again.WordCount)
	}
}

func TestDocumentUpdateMissing(t *testing.T) {
	s := NewDocumentStore(10)
	if err := s.Update(context.Background(), newDoc("ghost")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDocumentTagIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(10)

	doc := newDoc("d1")
	doc.AddTag("needs-review")
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := s.Get(ctx, "d1")
	got.Tags[0] = "clobbered"

	again, _ := s.Get(ctx, "d1")
	if again.Tags[0] != "needs-review" {
		t.Error("store shared its tag slice with the caller")
	}
}

func TestDocumentEvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(3)

	for i := range 5 {
		if err := s.Save(ctx, newDoc(fmt.Sprintf("d%d", i))); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	for _, id := range []string{"d0", "d1"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Get(%s) = %v, want ErrNotFound", id, err)
		}
	}
	all, _ := s.List(ctx, store.DocumentFilter{}, 0, 0)
	if len(all) != 3 || all[0].ID != "d2" {
		t.Errorf("survivors = %+v", all)
	}
}

func TestDocumentListFilter(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(0)

	d1 := newDoc("d1")
	d2 := newDoc("d2")
	d2.Type = document.TypeRoadmap
	d3 := newDoc("d3")
	d3.Status = document.StatusFailed
	for _, doc := range []*document.Document{d1, d2, d3} {
		if err := s.Save(ctx, doc); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	readmes, err := s.List(ctx, store.DocumentFilter{Type: document.TypeReadme}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(readmes) != 2 {
		t.Errorf("readme count = %d, want 2", len(readmes))
	}

	failed, _ := s.List(ctx, store.DocumentFilter{Status: document.StatusFailed}, 0, 0)
	if len(failed) != 1 || failed[0].ID != "d3" {
		t.Errorf("failed = %+v", failed)
	}
}

func TestDocumentStats(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(10)

	d1 := newDoc("d1")
	d2 := newDoc("d2")
	d2.Status = document.StatusFailed
	d2.Type = document.TypeAPIDoc
	for _, doc := range []*document.Document{d1, d2} {
		if err := s.Save(ctx, doc); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.ByStatus["failed"] != 1 || stats.ByType["readme"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
