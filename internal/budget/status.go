package budget

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Status classifies budget health for an expense line.
type Status string

const (
	StatusOK    Status = "OK"
	StatusWatch Status = "WATCH"
	StatusOver  Status = "OVER"
)

// Tolerance is the qualitative label for the allowed variance percentage.
type Tolerance string

const (
	ToleranceStrict   Tolerance = "strict"
	ToleranceModerate Tolerance = "moderate"
	ToleranceLoose    Tolerance = "loose"
)

var (
	strictCap   = decimal.NewFromFloat(0.05)
	moderateCap = decimal.NewFromFloat(0.10)

	// defaultAllowedVariance backs status derivation when the sheet did not
	// supply an allowed percentage. Matches the moderate tolerance tier.
	defaultAllowedVariance = decimal.NewFromFloat(0.10)
)

// ResolveStatus normalizes a supplied status, or derives one from the variance
// figures when absent. The boolean reports whether the inputs were complete:
// a missing variance percentage defaults conservatively to WATCH with
// complete=false so an incomplete payload never auto-approves.
func ResolveStatus(supplied string, variancePct, allowedPct Number) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(supplied))) {
	case StatusOK:
		return StatusOK, true
	case StatusWatch:
		return StatusWatch, true
	case StatusOver:
		return StatusOver, true
	}

	if !variancePct.Valid() {
		return StatusWatch, false
	}

	allowed := defaultAllowedVariance
	if allowedPct.Valid() {
		allowed = allowedPct.Decimal()
	}

	variance := variancePct.Decimal()
	switch {
	case variance.GreaterThan(allowed):
		return StatusOver, true
	case variance.GreaterThan(decimal.Zero):
		return StatusWatch, true
	default:
		return StatusOK, true
	}
}

// ToleranceFor maps the allowed variance percentage onto a tolerance label
// using inclusive upper bounds per tier: <=0.05 strict, <=0.10 moderate,
// above that loose. An absent value takes the moderate default.
func ToleranceFor(allowedPct Number) Tolerance {
	if !allowedPct.Valid() {
		return ToleranceModerate
	}
	value := allowedPct.Decimal()
	switch {
	case value.LessThanOrEqual(strictCap):
		return ToleranceStrict
	case value.LessThanOrEqual(moderateCap):
		return ToleranceModerate
	default:
		return ToleranceLoose
	}
}
