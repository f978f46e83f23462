package processor

import (
	"math"
	"testing"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		name     string
		in       interface{}
		fallback float64
		want     float64
	}{
		{"plain float", 42.5, 0, 42.5},
		{"int", 7, 0, 7},
		{"currency string", "1,234.56 USD", 0, 1234.56},
		{"dollar prefix", "$99.90", 0, 99.9},
		{"negative string", "-12.5", 0, -12.5},
		{"nil", nil, 7, 7},
		{"nan", math.NaN(), 3, 3},
		{"inf", math.Inf(1), 3, 3},
		{"empty string", "", 5, 5},
		{"letters only", "abc", 5, 5},
		{"bool", true, 9, 9},
		{"object", map[string]interface{}{"a": 1}, 2, 2},
		{"double dot", "1.2.3", 4, 4},
	}
	for _, c := range cases {
		if got := CoerceNumber(c.in, c.fallback); got != c.want {
			t.Errorf("%s: CoerceNumber(%v, %v) = %v, want %v", c.name, c.in, c.fallback, got, c.want)
		}
	}
}

func TestCoerceString(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"  alice  ", "alice"},
		{42.0, "42"},
		{42.5, "42.5"},
		{nil, ""},
		{true, ""},
		{map[string]interface{}{}, ""},
	}
	for _, c := range cases {
		if got := CoerceString(c.in); got != c.want {
			t.Errorf("CoerceString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
