// Package document defines the ProjectDocument entity, its state machine,
// and the value objects produced by the generation pipeline.
package document

import (
	"strings"
	"time"
)

// Type classifies the kind of project documentation a document holds.
type Type string

const (
	TypeReadme          Type = "readme"
	TypeAPIDoc          Type = "api_documentation"
	TypeArchitecture    Type = "architecture_analysis"
	TypeRoadmap         Type = "project_roadmap"
	TypeTechnicalSpec   Type = "technical_specification"
	TypeUserGuide       Type = "user_guide"
	TypeDeploymentGuide Type = "deployment_guide"
)

// Status represents where a document sits in its lifecycle.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReviewing  Status = "reviewing"
	StatusPublished  Status = "published"
)

// Document is a generated Markdown project document. AgentID is a weak
// reference: the generating agent may be deleted later without invalidating
// the document.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      Type      `json:"document_type"`
	Status    Status    `json:"status"`
	WordCount int       `json:"word_count"`
	AgentID   string    `json:"generating_agent_id"`
	Tags      []string  `json:"tags,omitempty"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidType reports whether t is a known document type.
func ValidType(t Type) bool {
	switch t {
	case TypeReadme, TypeAPIDoc, TypeArchitecture, TypeRoadmap,
		TypeTechnicalSpec, TypeUserGuide, TypeDeploymentGuide:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known document status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusFailed,
		StatusReviewing, StatusPublished:
		return true
	}
	return false
}

// CanTransition reports whether the document state machine allows moving
// from one status to another. published and failed are terminal; a failed
// generation is retried by generating a fresh document, never by reviving
// the failed one.
//
//	draft       -> in_progress
//	in_progress -> completed | failed
//	completed   -> reviewing
//	reviewing   -> published
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusDraft:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusReviewing
	case StatusReviewing:
		return to == StatusPublished
	}
	return false
}

// WordCount returns the whitespace-token count of content. The stored
// Document.WordCount field is always derived through SetContent; it is never
// set independently.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// SetContent replaces the document content, recomputing the word count and
// bumping updated_at.
func (d *Document) SetContent(content string) {
	d.Content = content
	d.WordCount = WordCount(content)
	d.UpdatedAt = time.Now().UTC()
}

// AddTag appends a tag if not already present.
func (d *Document) AddTag(tag string) {
	for _, t := range d.Tags {
		if t == tag {
			return
		}
	}
	d.Tags = append(d.Tags, tag)
	d.UpdatedAt = time.Now().UTC()
}
