// Package strategy resolves the cost-control strategy document embedded in
// the model prompt for over-budget expenses.
package strategy

import "strings"

// Sources identify where the resolved strategy text came from, reported by
// the config endpoint and logged per request.
const (
	SourceRequest     = "request"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Default is the built-in strategy document used when neither the request nor
// the environment supplies an override.
const Default = `Our cost-control posture favors staying inside approved budgets. When a division exceeds its allowed variance, prefer cutting discretionary spend before moving money between lines, and prefer reallocating existing budget before requesting an increase.

Reallocation is appropriate when another line in the same division shows positive headroom at least equal to the overage and the expense supports committed deliverables. Budget increases require a durable change in scope or vendor pricing, not a one-off spike.

Cost cuts should target the expense category under review first: renegotiate vendor terms, defer non-critical purchases, or downscale the commitment. Never recommend cuts that break contractual obligations already invoiced.

State the expected financial impact in one short sentence that a finance operator can paste into an approval note.`

// Resolve picks the strategy text in precedence order: request override, then
// environment override, then the built-in default. Returns the text and its
// source label.
func Resolve(requestOverride, envOverride string) (string, string) {
	if text := strings.TrimSpace(requestOverride); text != "" {
		return text, SourceRequest
	}
	if text := strings.TrimSpace(envOverride); text != "" {
		return text, SourceEnvironment
	}
	return Default, SourceDefault
}
