package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/docsmith/docsmith/internal/port/messagequeue"
)

// agentStatusEvent is the payload published on agents.status.
type agentStatusEvent struct {
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// documentStatusEvent is the payload published on documents.status.
type documentStatusEvent struct {
	DocumentID string    `json:"document_id"`
	AgentID    string    `json:"agent_id,omitempty"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// publishEvent marshals and publishes a lifecycle event. Publishing is
// best-effort: a nil queue or a failed publish never fails the operation
// that produced the event.
func publishEvent(ctx context.Context, queue messagequeue.Publisher, log *slog.Logger, subject string, payload any) {
	if queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshal event", "subject", subject, "error", err)
		return
	}
	if err := queue.Publish(ctx, subject, data); err != nil {
		log.Warn("publish event", "subject", subject, "error", err)
	}
}
