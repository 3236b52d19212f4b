package prompt

import (
	"strings"

	"github.com/docsmith/docsmith/internal/domain/document"
)

const minPromptLength = 10

var applicationKeywords = []string{
	"app", "application", "web", "site", "api", "service", "system",
	"platform", "tool", "cli", "bot", "dashboard", "mobile", "backend",
	"frontend", "library", "plugin", "game", "store", "marketplace",
}

// Heuristic performs a cheap local validation pass before a model is asked.
// It catches prompts that are obviously too short or carry no hint of what
// kind of software is wanted, saving a provider round trip.
func Heuristic(userPrompt string) *document.ValidationResult {
	trimmed := strings.TrimSpace(userPrompt)
	if len(trimmed) < minPromptLength {
		return &document.ValidationResult{
			IsValid:         false,
			ConfidenceScore: 0.95,
			Issues:          []string{"prompt is too short to describe a project"},
			Suggestions:     []string{"describe what kind of application you want and its main features"},
		}
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range applicationKeywords {
		if strings.Contains(lower, kw) {
			return &document.ValidationResult{IsValid: true, ConfidenceScore: 0.6}
		}
	}
	return &document.ValidationResult{
		IsValid:         false,
		ConfidenceScore: 0.7,
		Issues:          []string{"prompt does not mention what kind of application is wanted"},
		Suggestions:     []string{"mention the application type, e.g. web app, API, CLI tool"},
	}
}
