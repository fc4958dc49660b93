package ai

import (
	"context"

	"budget-advisor/backend/internal/budget"
)

// Advisor exposes model-backed recommendations for expenses the deterministic
// rules cannot resolve. Implementations return sanitized decisions: a field
// left empty means the model output was missing or out of set and the caller
// substitutes a deterministic fallback.
type Advisor interface {
	Enabled() bool
	Advise(ctx context.Context, input AdviceInput) (Decision, error)
}

// AdviceInput describes the signals embedded in the model prompt.
type AdviceInput struct {
	Division           string
	Category           string
	VendorSource       string
	Amount             budget.Number
	Notes              string
	VarianceSummary    string
	Status             budget.Status
	Tolerance          budget.Tolerance
	HeadroomCandidates string
	Strategy           string
	AllowedActions     []budget.Action
}
