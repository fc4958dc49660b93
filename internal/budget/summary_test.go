package budget

import "testing"

func TestSummaryFull(t *testing.T) {
	ctx := Context{
		BudgetAmount:       NumberFromFloat(180000),
		ActualToDate:       NumberFromFloat(184750),
		VarianceAmount:     NumberFromFloat(-4750),
		VariancePct:        NumberFromFloat(0.026),
		AllowedVariancePct: NumberFromFloat(0.05),
		Status:             StatusWatch,
		Headroom:           NumberFromFloat(-4750),
	}

	expected := "Budget 180000.00 | Actual 184750.00 | Variance -4750.00 (2.6%) | Allowed 5.0% | Status WATCH | Headroom -4750.00"
	if got := Summary(ctx); got != expected {
		t.Fatalf("expected %q got %q", expected, got)
	}
}

func TestSummaryMissingFields(t *testing.T) {
	ctx := Context{Status: StatusOver, ActualToDate: NumberFromFloat(900.5)}

	expected := "Budget n/a | Actual 900.50 | Variance n/a (n/a) | Allowed n/a | Status OVER | Headroom n/a"
	if got := Summary(ctx); got != expected {
		t.Fatalf("expected %q got %q", expected, got)
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected Action
	}{
		{"ok approves", StatusOK, ActionApprove},
		{"watch flags", StatusWatch, ActionFlag},
		{"over reallocates", StatusOver, ActionReallocate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			action, impact := Fallback(tc.status)
			if action != tc.expected {
				t.Fatalf("expected %s got %s", tc.expected, action)
			}
			if impact == "" {
				t.Fatal("expected impact text")
			}
		})
	}
}

func TestPolicyDelegation(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		status   Status
		complete bool
		expected bool
	}{
		{"deterministic ok", PolicyDeterministic, StatusOK, true, false},
		{"deterministic watch", PolicyDeterministic, StatusWatch, true, false},
		{"deterministic defaulted watch", PolicyDeterministic, StatusWatch, false, false},
		{"deterministic over", PolicyDeterministic, StatusOver, true, true},
		{"advisory defaulted watch", PolicyAdvisory, StatusWatch, false, true},
		{"advisory complete watch", PolicyAdvisory, StatusWatch, true, false},
		{"advisory over", PolicyAdvisory, StatusOver, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Delegates(tc.status, tc.complete); got != tc.expected {
				t.Fatalf("expected %v got %v", tc.expected, got)
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	allowed := PolicyDeterministic.AllowedActions()

	if action, ok := ParseAction("  Cut Costs ", allowed); !ok || action != ActionCutCosts {
		t.Fatalf("expected cut costs got %q ok=%v", action, ok)
	}
	if _, ok := ParseAction("approve", allowed); ok {
		t.Fatal("approve must not be accepted under deterministic policy")
	}
	if action, ok := ParseAction("approve", PolicyAdvisory.AllowedActions()); !ok || action != ActionApprove {
		t.Fatalf("expected approve got %q ok=%v", action, ok)
	}
	if _, ok := ParseAction("liquidate the division", allowed); ok {
		t.Fatal("out-of-set action must be rejected")
	}
}
