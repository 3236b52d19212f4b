package document_test

import (
	"testing"

	"github.com/docsmith/docsmith/internal/domain/document"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to document.Status
		want     bool
	}{
		{document.StatusDraft, document.StatusInProgress, true},
		{document.StatusInProgress, document.StatusCompleted, true},
		{document.StatusInProgress, document.StatusFailed, true},
		{document.StatusCompleted, document.StatusReviewing, true},
		{document.StatusReviewing, document.StatusPublished, true},
		{document.StatusDraft, document.StatusDraft, true},

		{document.StatusDraft, document.StatusCompleted, false},
		{document.StatusCompleted, document.StatusPublished, false},
		{document.StatusFailed, document.StatusInProgress, false},
		{document.StatusFailed, document.StatusDraft, false},
		{document.StatusPublished, document.StatusReviewing, false},
		{document.StatusPublished, document.StatusDraft, false},
	}
	for _, tt := range tests {
		if got := document.CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []document.Type{
		document.TypeReadme, document.TypeAPIDoc, document.TypeArchitecture,
		document.TypeRoadmap, document.TypeTechnicalSpec, document.TypeUserGuide,
		document.TypeDeploymentGuide,
	} {
		if !document.ValidType(typ) {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	if document.ValidType("poem") {
		t.Error("expected poem to be invalid")
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"# Title\n\nTwo words here.", 5},
		{"tabs\tand\nnewlines count", 4},
	}
	for _, tt := range tests {
		if got := document.WordCount(tt.content); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestSetContent(t *testing.T) {
	d := &document.Document{}
	before := d.UpdatedAt

	d.SetContent("hello generated world")

	if d.WordCount != 3 {
		t.Errorf("word count = %d, want 3", d.WordCount)
	}
	if !d.UpdatedAt.After(before) {
		t.Error("expected updated_at to advance")
	}
}

func TestAddTagDeduplicates(t *testing.T) {
	d := &document.Document{}
	d.AddTag("needs-review")
	d.AddTag("internal")
	d.AddTag("needs-review")

	if len(d.Tags) != 2 {
		t.Errorf("tags = %v, want 2 distinct", d.Tags)
	}
}

func TestValidComplexity(t *testing.T) {
	for _, c := range []document.ComplexityLevel{
		document.ComplexityLow, document.ComplexityMedium, document.ComplexityHigh,
	} {
		if !document.ValidComplexity(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if document.ValidComplexity("extreme") {
		t.Error("expected extreme to be invalid")
	}
}
