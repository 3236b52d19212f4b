// Package prompt builds the system/user prompts for each capability of the
// provider adapter contract and parses the structured responses models
// return. Both provider families share these shapes; only the wire call
// differs per adapter.
package prompt

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/docsmith/docsmith/internal/domain/agent"
	"github.com/docsmith/docsmith/internal/domain/document"
)

// System prompts per capability.
const (
	ValidationSystem = "You are an expert in software project documentation. " +
		"You validate whether prompts contain enough information to generate the requested document. " +
		"Be generous: approve prompts that have potential even when details are missing."

	MetadataSystem = "You are an expert in analyzing software project descriptions. " +
		"You extract structured metadata and respond only with JSON."

	GenerationSystem = "You are an expert technical writer. " +
		"You produce complete, well-structured Markdown documents."

	QualitySystem = "You are a documentation reviewer. " +
		"You score document quality and list concrete issues, responding only with JSON."

	ImproveSystem = "You are an expert at refining prompts for document generation. " +
		"Respond with the improved prompt only, no commentary."
)

// Validation returns the user prompt for prompt validation.
func Validation(userPrompt string) string {
	var b strings.Builder
	b.WriteString("Analyze whether the following prompt contains enough information to generate project documentation.\n\n")
	b.WriteString("Criteria:\n")
	b.WriteString("- The prompt should mention at least one kind of application (web, mobile, API, CLI, ...).\n")
	b.WriteString("- It should carry one clear central idea of what will be built.\n")
	b.WriteString("- It does not need every technical detail.\n\n")
	b.WriteString("PROMPT: ")
	b.WriteString(userPrompt)
	b.WriteString("\n\nRespond ONLY with a JSON object:\n")
	b.WriteString(`{"is_valid": true, "confidence": 0.0, "issues": [], "suggestions": []}`)
	return b.String()
}

// Metadata returns the user prompt for project metadata extraction.
func Metadata(userPrompt string) string {
	var b strings.Builder
	b.WriteString("Extract project metadata from the following prompt.\n\nPROMPT: ")
	b.WriteString(userPrompt)
	b.WriteString("\n\nRespond ONLY with a JSON object:\n")
	b.WriteString(`{"project_name": "", "description": "", "project_type": "", ` +
		`"technologies": [], "complexity_level": "low|medium|high", "estimated_duration": ""}`)
	return b.String()
}

// Generation returns the user prompt for document generation, assembled from
// the document type, the extracted metadata, caller-supplied extra context,
// and the agent's instruction list.
func Generation(userPrompt string, docType document.Type, meta *document.ProjectMetadata, extra map[string]string, ag *agent.Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s document in Markdown for the following project request.\n\n", docType)
	b.WriteString("REQUEST: ")
	b.WriteString(userPrompt)
	b.WriteString("\n")

	if meta != nil {
		b.WriteString("\nProject context:\n")
		fmt.Fprintf(&b, "- Name: %s\n", orUnspecified(meta.ProjectName))
		fmt.Fprintf(&b, "- Description: %s\n", orUnspecified(meta.Description))
		fmt.Fprintf(&b, "- Type: %s\n", orUnspecified(meta.ProjectType))
		fmt.Fprintf(&b, "- Technologies: %s\n", orUnspecified(strings.Join(meta.Technologies, ", ")))
		fmt.Fprintf(&b, "- Complexity: %s\n", orUnspecified(string(meta.ComplexityLevel)))
		fmt.Fprintf(&b, "- Estimated duration: %s\n", orUnspecified(meta.EstimatedDuration))
	}

	if len(extra) > 0 {
		b.WriteString("\nAdditional context:\n")
		for _, k := range slices.Sorted(maps.Keys(extra)) {
			fmt.Fprintf(&b, "- %s: %s\n", k, extra[k])
		}
	}

	if ag != nil && len(ag.Instructions) > 0 {
		b.WriteString("\nAdditional instructions:\n")
		for i, inst := range ag.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, inst)
		}
	}

	b.WriteString("\nProduce a complete, well-structured, informative document. Respond with Markdown only.")
	return b.String()
}

// Quality returns the user prompt for document quality analysis.
func Quality(doc *document.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the following %s document for completeness, structure, and clarity.\n\n", doc.Type)
	b.WriteString("DOCUMENT:\n")
	b.WriteString(doc.Content)
	b.WriteString("\n\nRespond ONLY with a JSON object:\n")
	b.WriteString(`{"quality_score": 0.0, "issues": []}`)
	return b.String()
}

// Improve returns the user prompt for prompt improvement.
func Improve(originalPrompt string) string {
	var b strings.Builder
	b.WriteString("Rewrite the following prompt so it yields better project documentation. ")
	b.WriteString("Keep the original intent, add missing specifics where they can be reasonably inferred.\n\nPROMPT: ")
	b.WriteString(originalPrompt)
	return b.String()
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}
