package document

// ComplexityLevel grades how involved a project is.
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

// ValidComplexity reports whether c is a known complexity level.
func ValidComplexity(c ComplexityLevel) bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// ProjectMetadata is the structured description of a project extracted from
// a prompt. It is a value object: produced by metadata extraction, consumed
// as generation context, never persisted on its own.
type ProjectMetadata struct {
	ProjectName       string          `json:"project_name"`
	Description       string          `json:"description"`
	ProjectType       string          `json:"project_type"`
	Technologies      []string        `json:"technologies"`
	ComplexityLevel   ComplexityLevel `json:"complexity_level"`
	EstimatedDuration string          `json:"estimated_duration"`
}

// ValidationResult is the outcome of prompt validation. It is returned
// directly to the caller and never persisted.
type ValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	ConfidenceScore float64  `json:"confidence_score"`
	Suggestions     []string `json:"suggestions"`
	Issues          []string `json:"issues"`
}

// QualityReport is the outcome of document quality analysis.
type QualityReport struct {
	QualityScore float64  `json:"quality_score"`
	Issues       []string `json:"issues"`
}
