package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/domain/document"
)

// ExtractJSON returns the first JSON object embedded in a model response.
// Models frequently wrap JSON in prose or code fences; scanning from the
// first '{' to the last '}' recovers the object in either case.
func ExtractJSON(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in model response")
	}
	return s[start : end+1], nil
}

type validationResponse struct {
	IsValid     bool     `json:"is_valid"`
	Confidence  float64  `json:"confidence"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// ParseValidation decodes a validation response. A response with no JSON or
// malformed JSON degrades to a permissive result rather than failing the
// request.
func ParseValidation(raw string) *document.ValidationResult {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return &document.ValidationResult{IsValid: true, ConfidenceScore: 0.5}
	}
	var vr validationResponse
	if err := json.Unmarshal([]byte(obj), &vr); err != nil {
		return &document.ValidationResult{IsValid: true, ConfidenceScore: 0.5}
	}
	return &document.ValidationResult{
		IsValid:         vr.IsValid,
		ConfidenceScore: clamp01(vr.Confidence),
		Issues:          vr.Issues,
		Suggestions:     vr.Suggestions,
	}
}

type metadataResponse struct {
	ProjectName       string   `json:"project_name"`
	Description       string   `json:"description"`
	ProjectType       string   `json:"project_type"`
	Technologies      []string `json:"technologies"`
	ComplexityLevel   string   `json:"complexity_level"`
	EstimatedDuration string   `json:"estimated_duration"`
}

// ParseMetadata decodes a metadata extraction response. A response missing
// the core fields is rejected rather than returned partially populated.
func ParseMetadata(raw string) (*document.ProjectMetadata, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	var mr metadataResponse
	if err := json.Unmarshal([]byte(obj), &mr); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if strings.TrimSpace(mr.ProjectName) == "" || strings.TrimSpace(mr.Description) == "" {
		return nil, fmt.Errorf("parse metadata: response lacks project_name or description")
	}
	level := document.ComplexityLevel(strings.ToLower(mr.ComplexityLevel))
	switch level {
	case document.ComplexityLow, document.ComplexityMedium, document.ComplexityHigh:
	default:
		level = document.ComplexityMedium
	}
	return &document.ProjectMetadata{
		ProjectName:       mr.ProjectName,
		Description:       mr.Description,
		ProjectType:       mr.ProjectType,
		Technologies:      mr.Technologies,
		ComplexityLevel:   level,
		EstimatedDuration: mr.EstimatedDuration,
	}, nil
}

type qualityResponse struct {
	QualityScore float64  `json:"quality_score"`
	Issues       []string `json:"issues"`
}

// ParseQuality decodes a quality analysis response.
func ParseQuality(raw string) (*document.QualityReport, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse quality report: %w", err)
	}
	var qr qualityResponse
	if err := json.Unmarshal([]byte(obj), &qr); err != nil {
		return nil, fmt.Errorf("parse quality report: %w", err)
	}
	return &document.QualityReport{
		QualityScore: clamp01(qr.QualityScore),
		Issues:       qr.Issues,
	}, nil
}

// Truncate shortens s to at most max bytes without splitting a rune.
// Returns the input unchanged when it already fits.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// CheckLength validates prompt length against the configured limit. When
// truncate is set the prompt is shortened instead of rejected.
func CheckLength(prompt string, max int, truncate bool) (string, error) {
	if max <= 0 || len(prompt) <= max {
		return prompt, nil
	}
	if truncate {
		return Truncate(prompt, max), nil
	}
	return "", fmt.Errorf("%w: prompt length %d exceeds limit %d", domain.ErrValidation, len(prompt), max)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
