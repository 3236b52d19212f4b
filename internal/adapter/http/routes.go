package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Agents
		r.Get("/agents", h.ListAgents)
		r.Post("/agents", h.CreateAgent)
		r.Get("/agents/stats", h.AgentStats)
		r.Get("/agents/{id}", h.GetAgent)
		r.Put("/agents/{id}", h.UpdateAgent)
		r.Delete("/agents/{id}", h.DeleteAgent)
		r.Put("/agents/{id}/status", h.UpdateAgentStatus)

		// Documents
		r.Get("/documents", h.ListDocuments)
		r.Post("/documents/generate", h.GenerateDocument)
		r.Get("/documents/stats", h.DocumentStats)
		r.Get("/documents/{id}", h.GetDocument)
		r.Delete("/documents/{id}", h.DeleteDocument)
		r.Put("/documents/{id}/status", h.UpdateDocumentStatus)
		r.Post("/documents/{id}/tags", h.AddDocumentTags)
		r.Post("/documents/{id}/quality", h.AnalyzeDocumentQuality)

		// Prompt tooling
		r.Post("/prompts/validate", h.ValidatePrompt)
		r.Post("/prompts/metadata", h.ExtractMetadata)
		r.Post("/prompts/improve", h.ImprovePrompt)
	})
}
