// Package core provides amount parsing and handling utilities.
//
// Amounts are float64 quantities in a single implicit currency. Parsing
// accepts JSON numbers and numeric strings so clients may send either.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseAmount coerces a decoded JSON value into a positive, finite amount.
//
// Examples:
//
//	ParseAmount(12.5)       -> 12.5, nil
//	ParseAmount("12.50")    -> 12.5, nil
//	ParseAmount("12,50")    -> 12.5, nil
//	ParseAmount("abc")      -> 0, ErrInvalidAmount
//	ParseAmount(-3.0)       -> 0, ErrInvalidAmount
func ParseAmount(v any) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, ErrInvalidAmount
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		// Accept a single decimal comma
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		f = parsed
	default:
		return 0, ErrInvalidAmount
	}
	if err := ValidateAmount(f); err != nil {
		return 0, err
	}
	return f, nil
}

// ValidateAmount rejects zero, negative and non-finite amounts.
func ValidateAmount(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
