// Package mcp exposes the document generation tools over the Model
// Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
	"github.com/docsmith/docsmith/internal/port/store"
	"github.com/docsmith/docsmith/internal/service"
)

const defaultListLimit = 50

// Server wraps an MCPServer with the docsmith services.
type Server struct {
	mcp    *mcpserver.MCPServer
	agents *service.AgentService
	gen    *service.GenerationService
	logger *slog.Logger
}

// NewServer creates an MCP server exposing generation and prompt tooling.
func NewServer(agents *service.AgentService, gen *service.GenerationService, logger *slog.Logger) *Server {
	s := &Server{agents: agents, gen: gen, logger: logger}

	mcpSrv := mcpserver.NewMCPServer(
		"docsmith",
		"0.1.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildGenerateTool(), s.handleGenerate)
	mcpSrv.AddTool(buildValidateTool(), s.handleValidate)
	mcpSrv.AddTool(buildImproveTool(), s.handleImprove)
	mcpSrv.AddTool(buildListAgentsTool(), s.handleListAgents)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleGenerate is the exported handler for the "generate_document" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleGenerate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleGenerate(ctx, req)
}

// HandleValidate is the exported handler for the "validate_prompt" tool.
func (s *Server) HandleValidate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleValidate(ctx, req)
}

// HandleImprove is the exported handler for the "improve_prompt" tool.
func (s *Server) HandleImprove(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleImprove(ctx, req)
}

// HandleListAgents is the exported handler for the "list_agents" tool.
func (s *Server) HandleListAgents(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleListAgents(ctx, req)
}

// stringMapArg reads an object argument as a string map, skipping values of
// other types.
func stringMapArg(req mcpgo.CallToolRequest, key string) map[string]string {
	raw, ok := req.GetArguments()[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildGenerateTool() mcpgo.Tool {
	return mcpgo.NewTool("generate_document",
		mcpgo.WithDescription("Generate a Markdown project document using a configured agent."),
		mcpgo.WithString("agent_id",
			mcpgo.Required(),
			mcpgo.Description("ID of the agent to generate with"),
		),
		mcpgo.WithString("prompt",
			mcpgo.Required(),
			mcpgo.Description("Project description to generate the document from"),
		),
		mcpgo.WithString("document_type",
			mcpgo.Required(),
			mcpgo.Description("Document type: readme, api_documentation, architecture_analysis, project_roadmap, technical_specification, user_guide, or deployment_guide"),
		),
		mcpgo.WithString("project_name",
			mcpgo.Description("Optional project name used as the document title; derived from the prompt when omitted"),
		),
		mcpgo.WithObject("additional_context",
			mcpgo.Description("Optional key/value pairs folded into the generation prompt"),
		),
	)
}

func buildValidateTool() mcpgo.Tool {
	return mcpgo.NewTool("validate_prompt",
		mcpgo.WithDescription("Check whether a prompt describes a software application well enough to generate documentation from."),
		mcpgo.WithString("agent_id",
			mcpgo.Required(),
			mcpgo.Description("ID of the agent whose provider performs the validation"),
		),
		mcpgo.WithString("prompt",
			mcpgo.Required(),
			mcpgo.Description("The prompt to validate"),
		),
	)
}

func buildImproveTool() mcpgo.Tool {
	return mcpgo.NewTool("improve_prompt",
		mcpgo.WithDescription("Rewrite a prompt to be clearer and more specific for document generation."),
		mcpgo.WithString("agent_id",
			mcpgo.Required(),
			mcpgo.Description("ID of the agent whose provider performs the rewrite"),
		),
		mcpgo.WithString("prompt",
			mcpgo.Required(),
			mcpgo.Description("The prompt to improve"),
		),
	)
}

func buildListAgentsTool() mcpgo.Tool {
	return mcpgo.NewTool("list_agents",
		mcpgo.WithDescription("List configured document generation agents."),
		mcpgo.WithString("status",
			mcpgo.Description("Filter by agent status: inactive, active, busy, error, or maintenance"),
		),
	)
}

// --- handlers ---

func (s *Server) handleGenerate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	prompt := req.GetString("prompt", "")
	docType := req.GetString("document_type", "")
	if agentID == "" || strings.TrimSpace(prompt) == "" || docType == "" {
		return mcpgo.NewToolResultError("agent_id, prompt, and document_type are required"), nil
	}

	doc, err := s.gen.Generate(ctx, &service.GenerateRequest{
		AgentID:           agentID,
		Prompt:            prompt,
		ProjectName:       req.GetString("project_name", ""),
		AdditionalContext: stringMapArg(req, "additional_context"),
		Type:              document.Type(docType),
	})
	if err != nil {
		s.logger.Warn("mcp generate failed", "agent_id", agentID, "error", err)
		return mcpgo.NewToolResultErrorFromErr("generation failed", err), nil
	}
	return toolResultJSON(doc)
}

func (s *Server) handleValidate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	prompt := req.GetString("prompt", "")
	if agentID == "" || strings.TrimSpace(prompt) == "" {
		return mcpgo.NewToolResultError("agent_id and prompt are required"), nil
	}

	result, err := s.gen.ValidatePrompt(ctx, agentID, prompt)
	if err != nil {
		return mcpgo.NewToolResultErrorFromErr("validation failed", err), nil
	}
	return toolResultJSON(result)
}

func (s *Server) handleImprove(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	prompt := req.GetString("prompt", "")
	if agentID == "" || strings.TrimSpace(prompt) == "" {
		return mcpgo.NewToolResultError("agent_id and prompt are required"), nil
	}

	improved, err := s.gen.ImprovePrompt(ctx, agentID, prompt)
	if err != nil {
		return mcpgo.NewToolResultErrorFromErr("improvement failed", err), nil
	}
	return toolResultJSON(map[string]string{"original": prompt, "improved": improved})
}

func (s *Server) handleListAgents(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	filter := store.AgentFilter{}
	if status := req.GetString("status", ""); status != "" {
		filter.Status = agent.Status(status)
	}

	agents, err := s.agents.List(ctx, filter, defaultListLimit, 0)
	if err != nil {
		return mcpgo.NewToolResultErrorFromErr("listing failed", err), nil
	}
	return toolResultJSON(agents)
}
