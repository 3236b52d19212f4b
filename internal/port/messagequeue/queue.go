// Package messagequeue defines the message queue port (interface) and subjects.
package messagequeue

import "context"

// Subjects for lifecycle events published by the services. Consumers
// (dashboards, audit pipelines) are external to this process.
const (
	SubjectAgentStatus    = "agents.status"
	SubjectDocumentStatus = "documents.status"
)

// Publisher is the port interface for publishing lifecycle events.
// Publishing is best-effort: services log failures and continue.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}
