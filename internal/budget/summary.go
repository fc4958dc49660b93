package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Context carries the budget-health figures supplied alongside an expense.
// Values arrive from an external spreadsheet lookup and are trusted but
// tolerated when missing.
type Context struct {
	BudgetAmount       Number
	ActualToDate       Number
	VarianceAmount     Number
	VariancePct        Number
	AllowedVariancePct Number
	Status             Status
	Headroom           Number
}

// Summary renders the single-line variance summary used in responses, logs,
// and the model prompt. Missing figures render as n/a.
func Summary(ctx Context) string {
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "Budget %s", money(ctx.BudgetAmount))
	fmt.Fprintf(builder, " | Actual %s", money(ctx.ActualToDate))
	fmt.Fprintf(builder, " | Variance %s (%s)", money(ctx.VarianceAmount), percent(ctx.VariancePct))
	fmt.Fprintf(builder, " | Allowed %s", percent(ctx.AllowedVariancePct))
	fmt.Fprintf(builder, " | Status %s", ctx.Status)
	fmt.Fprintf(builder, " | Headroom %s", money(ctx.Headroom))
	return builder.String()
}

func money(n Number) string {
	if !n.Valid() {
		return "n/a"
	}
	return n.Decimal().StringFixed(2)
}

func percent(n Number) string {
	if !n.Valid() {
		return "n/a"
	}
	return n.Decimal().Mul(hundred).StringFixed(1) + "%"
}
