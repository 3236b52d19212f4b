// Package agent defines the Agent domain entity and its state machine.
package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/docsmith/docsmith/internal/domain"
)

// Status represents the current state of an agent.
type Status string

const (
	StatusInactive    Status = "inactive"
	StatusActive      Status = "active"
	StatusBusy        Status = "busy"
	StatusError       Status = "error"
	StatusMaintenance Status = "maintenance"
)

// Type classifies what an agent specializes in.
type Type string

const (
	TypeMarkdownGenerator Type = "markdown_generator"
	TypeCodeAnalyzer      Type = "code_analyzer"
	TypeProjectPlanner    Type = "project_planner"
	TypeDocumentWriter    Type = "document_writer"
	TypeMVPSpecialist     Type = "mvp_specialist"
)

// Provider identifies a model-provider family.
type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Temperature bounds accepted by every provider.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Agent binds a model provider, model id, and sampling parameters into a
// configured generation worker.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         Type      `json:"agent_type"`
	Provider     Provider  `json:"model_provider"`
	ModelID      string    `json:"model_id"`
	Temperature  float64   `json:"temperature"`
	MaxTokens    int       `json:"max_tokens"`
	Instructions []string  `json:"instructions"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest carries the caller-supplied fields for a new agent.
type CreateRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Type         Type     `json:"agent_type"`
	Provider     Provider `json:"model_provider"`
	ModelID      string   `json:"model_id"`
	Temperature  float64  `json:"temperature"`
	MaxTokens    int      `json:"max_tokens"`
	Instructions []string `json:"instructions"`
	Status       Status   `json:"status,omitempty"`
}

// Validate checks the request against the domain invariants that do not
// require provider knowledge. Model-id membership in the provider's
// supported set is checked by the resolved provider adapter.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !ValidType(r.Type) {
		return fmt.Errorf("%w: unknown agent type %q", domain.ErrValidation, r.Type)
	}
	if !ValidProvider(r.Provider) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, r.Provider)
	}
	if strings.TrimSpace(r.ModelID) == "" {
		return fmt.Errorf("%w: model_id is required", domain.ErrInvalidConfig)
	}
	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature %.2f outside [%.1f, %.1f]",
			domain.ErrInvalidConfig, r.Temperature, MinTemperature, MaxTemperature)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive", domain.ErrInvalidConfig)
	}
	if r.Status != "" && !ValidStatus(r.Status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, r.Status)
	}
	return nil
}

// ValidStatus reports whether s is a known agent status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusInactive, StatusActive, StatusBusy, StatusError, StatusMaintenance:
		return true
	}
	return false
}

// ValidType reports whether t is a known agent type.
func ValidType(t Type) bool {
	switch t {
	case TypeMarkdownGenerator, TypeCodeAnalyzer, TypeProjectPlanner,
		TypeDocumentWriter, TypeMVPSpecialist:
		return true
	}
	return false
}

// ValidProvider reports whether p is a known model provider.
func ValidProvider(p Provider) bool {
	switch p {
	case ProviderGroq, ProviderOpenAI, ProviderAnthropic:
		return true
	}
	return false
}

// CanTransition reports whether the agent state machine allows moving from
// one status to another. Agents are long-lived; there is no terminal state.
//
//	inactive -> active
//	active   -> busy
//	busy     -> active
//	any      -> error
//	error    -> maintenance
//	maintenance -> active
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	if to == StatusError {
		return true
	}
	switch from {
	case StatusInactive:
		return to == StatusActive
	case StatusActive:
		return to == StatusBusy
	case StatusBusy:
		return to == StatusActive
	case StatusError:
		return to == StatusMaintenance
	case StatusMaintenance:
		return to == StatusActive
	}
	return false
}

// Touch bumps the updated_at timestamp.
func (a *Agent) Touch() {
	a.UpdatedAt = time.Now().UTC()
}
