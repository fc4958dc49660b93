package budget

import "strings"

// Action is a recommendation verb returned to automation consumers.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionFlag       Action = "flag"
	ActionCutCosts   Action = "cut costs"
	ActionReallocate Action = "reallocate budget"
	ActionIncrease   Action = "increase budget"
)

// Policy selects how aggressively the service consults the completion model.
type Policy string

const (
	// PolicyDeterministic resolves OK and WATCH locally and delegates only
	// OVER; the model may answer with cost-side actions only.
	PolicyDeterministic Policy = "deterministic"
	// PolicyAdvisory additionally delegates payloads whose status could not
	// be derived from complete data, and admits approve/flag from the model.
	PolicyAdvisory Policy = "advisory"
)

// ParsePolicy reads a policy name, defaulting to deterministic.
func ParsePolicy(value string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(value))) == PolicyAdvisory {
		return PolicyAdvisory
	}
	return PolicyDeterministic
}

// Delegates reports whether the model should be consulted for the resolved
// status. OK and WATCH from complete data never reach the model.
func (p Policy) Delegates(status Status, complete bool) bool {
	if status == StatusOver {
		return true
	}
	return p == PolicyAdvisory && !complete
}

// AllowedActions enumerates the model answers accepted under this policy.
func (p Policy) AllowedActions() []Action {
	actions := []Action{ActionCutCosts, ActionReallocate, ActionIncrease}
	if p == PolicyAdvisory {
		actions = append(actions, ActionApprove, ActionFlag)
	}
	return actions
}

// ParseAction validates a raw action string against an allowed set.
func ParseAction(value string, allowed []Action) (Action, bool) {
	candidate := Action(strings.ToLower(strings.TrimSpace(value)))
	for _, action := range allowed {
		if candidate == action {
			return action, true
		}
	}
	return "", false
}

const (
	impactWithinBudget  = "Spending is within budget; no action required."
	impactWatchVariance = "Variance is inside the allowed tolerance; monitor spending through period close."
	impactOverFallback  = "Rebalance allocations to absorb the overage while a reviewer validates the spend."
)

// Fallback returns the deterministic action and impact text for a status. It
// backs the OK/WATCH short-circuit and substitutes for unusable model output
// on the OVER path.
func Fallback(status Status) (Action, string) {
	switch status {
	case StatusOK:
		return ActionApprove, impactWithinBudget
	case StatusWatch:
		return ActionFlag, impactWatchVariance
	default:
		return ActionReallocate, impactOverFallback
	}
}
