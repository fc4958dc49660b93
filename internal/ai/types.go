package ai

// Decision captures the structured response expected from the completion API:
// a strict JSON object with exactly these four keys.
type Decision struct {
	VarianceSummary string `json:"VarianceSummary"`
	AITolerance     string `json:"AITolerance"`
	AIAction        string `json:"AIAction"`
	ExpectedImpact  string `json:"ExpectedImpact"`
}
