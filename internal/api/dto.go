package api

import (
	"encoding/json"
	"strings"

	"budget-advisor/backend/internal/budget"
)

// RecommendRequest carries the expense fields and the budget context produced
// by the upstream spreadsheet lookup. Numeric fields are coerced leniently;
// Amount stays raw so an absent field can be told apart from an unparseable
// one.
type RecommendRequest struct {
	Division     string          `json:"Division"`
	Category     string          `json:"Category"`
	VendorSource string          `json:"VendorSource"`
	Amount       json.RawMessage `json:"Amount"`
	Notes        string          `json:"Notes"`

	BudgetAmount       budget.Number `json:"BudgetAmount"`
	ActualToDate       budget.Number `json:"ActualToDate"`
	VarianceAmount     budget.Number `json:"VarianceAmount"`
	VariancePct        budget.Number `json:"VariancePct"`
	AllowedVariancePct budget.Number `json:"AllowedVariancePct"`
	Status             string        `json:"Status"`
	Headroom           budget.Number `json:"Headroom"`

	HeadroomCandidates json.RawMessage `json:"HeadroomCandidates"`
	StrategyOverride   string          `json:"StrategyOverride"`
}

// budgetContext assembles the derived-summary inputs from the request.
func (r RecommendRequest) budgetContext(status budget.Status) budget.Context {
	return budget.Context{
		BudgetAmount:       r.BudgetAmount,
		ActualToDate:       r.ActualToDate,
		VarianceAmount:     r.VarianceAmount,
		VariancePct:        r.VariancePct,
		AllowedVariancePct: r.AllowedVariancePct,
		Status:             status,
		Headroom:           r.Headroom,
	}
}

// amountPresent reports whether the Amount field was supplied at all. A JSON
// null or empty string counts as absent; any other value is kept, even when
// it fails numeric coercion.
func (r RecommendRequest) amountPresent() bool {
	trimmed := strings.TrimSpace(string(r.Amount))
	if trimmed == "" || trimmed == "null" {
		return false
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(r.Amount, &text); err == nil && strings.TrimSpace(text) == "" {
			return false
		}
	}
	return true
}

// amount coerces the raw Amount leniently; garbage yields an invalid Number.
func (r RecommendRequest) amount() budget.Number {
	var n budget.Number
	if len(r.Amount) == 0 {
		return n
	}
	_ = json.Unmarshal(r.Amount, &n)
	return n
}

// headroomCandidates renders the JSON-or-text side channel as prompt text.
func (r RecommendRequest) headroomCandidates() string {
	trimmed := strings.TrimSpace(string(r.HeadroomCandidates))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(r.HeadroomCandidates, &text); err == nil {
			return strings.TrimSpace(text)
		}
	}
	return trimmed
}

// RecommendResponse is the fixed-shape success body. The lowercase keys
// mirror the first three fields for older automation consumers.
type RecommendResponse struct {
	VarianceSummary string `json:"VarianceSummary"`
	AITolerance     string `json:"AITolerance"`
	AIAction        string `json:"AIAction"`
	ExpectedImpact  string `json:"ExpectedImpact"`

	LegacySummary        string `json:"summary"`
	LegacyTolerance      string `json:"tolerance"`
	LegacyRecommendation string `json:"recommendation"`
}

// NewRecommendResponse builds a response with the legacy mirror keys filled.
func NewRecommendResponse(summary string, tolerance budget.Tolerance, action budget.Action, impact string) RecommendResponse {
	return RecommendResponse{
		VarianceSummary:      summary,
		AITolerance:          string(tolerance),
		AIAction:             string(action),
		ExpectedImpact:       impact,
		LegacySummary:        summary,
		LegacyTolerance:      string(tolerance),
		LegacyRecommendation: string(action),
	}
}
