package budget

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is an optional numeric value parsed leniently from JSON. Upstream
// spreadsheet exports deliver figures as numbers, numeric strings, empty
// strings, or free text; anything that cannot be read as a number becomes an
// invalid Number rather than an unmarshal error.
type Number struct {
	value decimal.Decimal
	valid bool
}

// NumberFromFloat wraps a known-good float value.
func NumberFromFloat(v float64) Number {
	return Number{value: decimal.NewFromFloat(v), valid: true}
}

// Valid reports whether a numeric value was supplied.
func (n Number) Valid() bool {
	return n.valid
}

// Decimal returns the underlying value; zero when invalid.
func (n Number) Decimal() decimal.Decimal {
	return n.value
}

// Float64 returns the value as a float; zero when invalid.
func (n Number) Float64() float64 {
	if !n.valid {
		return 0
	}
	f, _ := n.value.Float64()
	return f
}

// UnmarshalJSON accepts numbers, numeric strings (with optional currency
// symbol and thousands separators), null, and garbage. Garbage yields an
// invalid Number, never an error.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*n = Number{}
		return nil
	}

	raw := string(trimmed)
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			*n = Number{}
			return nil
		}
		text = strings.TrimSpace(text)
		text = strings.TrimPrefix(text, "$")
		text = strings.ReplaceAll(text, ",", "")
		if text == "" {
			*n = Number{}
			return nil
		}
		raw = text
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Number{value: value, valid: true}
	return nil
}

// MarshalJSON renders the value as a JSON number, or null when absent.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

func (n Number) String() string {
	if !n.valid {
		return "n/a"
	}
	return n.value.String()
}
