// Package http exposes the REST API over chi.
package http

import (
	"net/http"

	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/store"
	"github.com/docsmith/docsmith/internal/service"
)

// Handlers bundles the services the HTTP layer dispatches to.
type Handlers struct {
	Agents     *service.AgentService
	Documents  *service.DocumentService
	Generation *service.GenerationService
}

func NewHandlers(agents *service.AgentService, docs *service.DocumentService, gen *service.GenerationService) *Handlers {
	return &Handlers{Agents: agents, Documents: docs, Generation: gen}
}

// ---------------------------------------------------------------------------
// Agents
// ---------------------------------------------------------------------------

func (h *Handlers) CreateAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[agent.CreateRequest](w, r)
	if !ok {
		return
	}
	ag, err := h.Agents.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "agent creation failed")
		return
	}
	writeJSON(w, http.StatusCreated, ag)
}

func (h *Handlers) GetAgent(w http.ResponseWriter, r *http.Request) {
	ag, err := h.Agents.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, ag)
}

func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AgentFilter{
		Type:     agent.Type(q.Get("type")),
		Provider: agent.Provider(q.Get("provider")),
		Status:   agent.Status(q.Get("status")),
	}
	limit, offset := parsePagination(r)
	items, err := h.Agents.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeDomainError(w, err, "listing failed")
		return
	}
	if items == nil {
		items = []agent.Agent{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[agent.CreateRequest](w, r)
	if !ok {
		return
	}
	ag, err := h.Agents.Update(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, ag)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) UpdateAgentStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[statusRequest](w, r)
	if !ok {
		return
	}
	ag, err := h.Agents.UpdateStatus(r.Context(), urlParam(r, "id"), agent.Status(req.Status))
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, ag)
}

func (h *Handlers) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := h.Agents.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AgentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Agents.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Documents.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.DocumentFilter{
		Type:   document.Type(q.Get("type")),
		Status: document.Status(q.Get("status")),
	}
	limit, offset := parsePagination(r)
	items, err := h.Documents.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeDomainError(w, err, "listing failed")
		return
	}
	if items == nil {
		items = []document.Document{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) UpdateDocumentStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[statusRequest](w, r)
	if !ok {
		return
	}
	doc, err := h.Documents.UpdateStatus(r.Context(), urlParam(r, "id"), document.Status(req.Status))
	if err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type tagsRequest struct {
	Tags []string `json:"tags"`
}

func (h *Handlers) AddDocumentTags(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tagsRequest](w, r)
	if !ok {
		return
	}
	doc, err := h.Documents.AddTags(r.Context(), urlParam(r, "id"), req.Tags)
	if err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DocumentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Documents.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) AnalyzeDocumentQuality(w http.ResponseWriter, r *http.Request) {
	report, err := h.Generation.AnalyzeQuality(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ---------------------------------------------------------------------------
// Generation and prompt tooling
// ---------------------------------------------------------------------------

func (h *Handlers) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.GenerateRequest](w, r)
	if !ok {
		return
	}
	doc, err := h.Generation.Generate(r.Context(), &req)
	if err != nil {
		// A failed generation still yields the persisted document; the
		// error response carries the reason.
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

type promptRequest struct {
	AgentID string `json:"agent_id"`
	Prompt  string `json:"prompt"`
}

func (h *Handlers) ValidatePrompt(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[promptRequest](w, r)
	if !ok {
		return
	}
	result, err := h.Generation.ValidatePrompt(r.Context(), req.AgentID, req.Prompt)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ExtractMetadata(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[promptRequest](w, r)
	if !ok {
		return
	}
	meta, err := h.Generation.ExtractMetadata(r.Context(), req.AgentID, req.Prompt)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

type improveResponse struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
}

func (h *Handlers) ImprovePrompt(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[promptRequest](w, r)
	if !ok {
		return
	}
	improved, err := h.Generation.ImprovePrompt(r.Context(), req.AgentID, req.Prompt)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, improveResponse{Original: req.Prompt, Improved: improved})
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
