package processor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceNumber converts a loosely-typed JSON value into a float64. Strings are
// cleaned of currency symbols and thousands separators before parsing, so
// "1,234.56 USD" yields 1234.56. Anything that does not resolve to a finite
// number returns fallback. Never panics.
func CoerceNumber(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return n
	case float32:
		return CoerceNumber(float64(n), fallback)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return CoerceNumber(string(n), fallback)
	case string:
		cleaned := cleanNumeric(n)
		if cleaned == "" {
			return fallback
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// CoerceString converts a value into a display string. Strings are trimmed,
// numbers are formatted without exponent notation, everything else becomes "".
func CoerceString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return ""
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return CoerceString(float64(s))
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case json.Number:
		return strings.TrimSpace(string(s))
	default:
		return ""
	}
}

// cleanNumeric strips every character except digits, '.' and '-'.
func cleanNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
