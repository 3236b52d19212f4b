package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	dsmcp "github.com/docsmith/docsmith/internal/adapter/mcp"
	"github.com/docsmith/docsmith/internal/adapter/memstore"
	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/provider"
	"github.com/docsmith/docsmith/internal/service"
)

type stubProvider struct{}

var _ provider.Provider = (*stubProvider)(nil)

func (stubProvider) Name() string              { return "groq" }
func (stubProvider) SupportedModels() []string { return []string{"test-model"} }

func (stubProvider) ValidateAgentConfig(req *agent.CreateRequest) error {
	if req.ModelID != "test-model" {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedModel, req.ModelID)
	}
	return nil
}

func (stubProvider) ValidatePrompt(context.Context, string, *agent.Agent) (*document.ValidationResult, error) {
	return &document.ValidationResult{IsValid: true, ConfidenceScore: 0.9}, nil
}

func (stubProvider) ExtractMetadata(context.Context, string, *agent.Agent) (*document.ProjectMetadata, error) {
	return &document.ProjectMetadata{ProjectName: "Tool Project"}, nil
}

func (stubProvider) GenerateDocument(context.Context, string, document.Type, *document.ProjectMetadata, map[string]string, *agent.Agent) (string, error) {
	return "# Tool Project\n\nGenerated.", nil
}

func (stubProvider) AnalyzeQuality(context.Context, *document.Document, *agent.Agent) (*document.QualityReport, error) {
	return &document.QualityReport{QualityScore: 0.9}, nil
}

func (stubProvider) ImprovePrompt(_ context.Context, prompt string, _ *agent.Agent) (string, error) {
	return "improved: " + prompt, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(agent.Provider) (provider.Provider, error) {
	return stubProvider{}, nil
}

func newServer(t *testing.T) (*dsmcp.Server, *agent.Agent) {
	t.Helper()

	agents := memstore.NewAgentStore(0)
	docs := memstore.NewDocumentStore(0)
	log := slog.New(slog.DiscardHandler)
	res := stubResolver{}

	agentSvc := service.NewAgentService(agents, res, nil, log)
	genSvc := service.NewGenerationService(agents, docs, res, nil, nil,
		config.Generation{MaxContentLength: 50000, QualityThreshold: 0.7, Timeout: 5 * time.Second},
		time.Hour, nil, log)

	ag, err := agentSvc.Create(context.Background(), &agent.CreateRequest{
		Name:        "tool agent",
		Type:        agent.TypeMarkdownGenerator,
		Provider:    agent.ProviderGroq,
		ModelID:     "test-model",
		Temperature: 0.7,
		MaxTokens:   2048,
		Status:      agent.StatusActive,
	})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	return dsmcp.NewServer(agentSvc, genSvc, log), ag
}

// makeReq builds a CallToolRequest with the given arguments.
func makeReq(toolName string, args map[string]any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, res *mcpgo.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcpgo.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestGenerateDocumentTool(t *testing.T) {
	srv, ag := newServer(t)

	res, err := srv.HandleGenerate(context.Background(), makeReq("generate_document", map[string]any{
		"agent_id":           ag.ID,
		"prompt":             "a web app for sharing recipes",
		"document_type":      "readme",
		"additional_context": map[string]any{"audience": "home cooks"},
	}))
	if err != nil {
		t.Fatalf("HandleGenerate: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(textContent(t, res)), &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	if doc.Status != document.StatusCompleted {
		t.Errorf("status = %q", doc.Status)
	}
	if doc.Title != "Tool Project" {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestGenerateDocumentToolProjectName(t *testing.T) {
	srv, ag := newServer(t)

	res, err := srv.HandleGenerate(context.Background(), makeReq("generate_document", map[string]any{
		"agent_id":      ag.ID,
		"prompt":        "a web app for sharing recipes",
		"document_type": "readme",
		"project_name":  "RecipeBox",
	}))
	if err != nil {
		t.Fatalf("HandleGenerate: %v", err)
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(textContent(t, res)), &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	if doc.Title != "RecipeBox" {
		t.Errorf("title = %q, want caller-supplied project name", doc.Title)
	}
}

func TestGenerateDocumentToolMissingArgs(t *testing.T) {
	srv, _ := newServer(t)

	res, err := srv.HandleGenerate(context.Background(), makeReq("generate_document", map[string]any{
		"prompt": "a web app",
	}))
	if err != nil {
		t.Fatalf("HandleGenerate: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing agent_id and document_type")
	}
}

func TestGenerateDocumentToolUnknownAgent(t *testing.T) {
	srv, _ := newServer(t)

	res, err := srv.HandleGenerate(context.Background(), makeReq("generate_document", map[string]any{
		"agent_id":      "ghost",
		"prompt":        "a web app for sharing recipes",
		"document_type": "readme",
	}))
	if err != nil {
		t.Fatalf("HandleGenerate: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for unknown agent")
	}
}

func TestValidatePromptTool(t *testing.T) {
	srv, ag := newServer(t)

	res, err := srv.HandleValidate(context.Background(), makeReq("validate_prompt", map[string]any{
		"agent_id": ag.ID,
		"prompt":   "a web app for sharing recipes",
	}))
	if err != nil {
		t.Fatalf("HandleValidate: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}

	var vr document.ValidationResult
	if err := json.Unmarshal([]byte(textContent(t, res)), &vr); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !vr.IsValid {
		t.Error("expected valid prompt")
	}
}

func TestImprovePromptTool(t *testing.T) {
	srv, ag := newServer(t)

	res, err := srv.HandleImprove(context.Background(), makeReq("improve_prompt", map[string]any{
		"agent_id": ag.ID,
		"prompt":   "a web app",
	}))
	if err != nil {
		t.Fatalf("HandleImprove: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(textContent(t, res)), &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out["improved"] != "improved: a web app" {
		t.Errorf("improved = %q", out["improved"])
	}
}

func TestListAgentsTool(t *testing.T) {
	srv, _ := newServer(t)

	res, err := srv.HandleListAgents(context.Background(), makeReq("list_agents", map[string]any{
		"status": "active",
	}))
	if err != nil {
		t.Fatalf("HandleListAgents: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}

	var agents []agent.Agent
	if err := json.Unmarshal([]byte(textContent(t, res)), &agents); err != nil {
		t.Fatalf("unmarshal agents: %v", err)
	}
	if len(agents) != 1 {
		t.Errorf("agents = %d, want 1", len(agents))
	}
}
