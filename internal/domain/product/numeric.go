package product

import (
	"math"
	"strconv"
	"strings"
)

// Numeric is the extracted numeric view of a specification value.
// A point value has Min == Max == Value; a range carries its midpoint in Value.
type Numeric struct {
	Value float64
	Unit  string
	Min   float64
	Max   float64
}

// extractNumeric applies the extraction rules in priority order, first
// success wins:
//  1. Value parses numerically (point value; explicit Min/Max override the
//     point bounds when they parse);
//  2. Range of the form "min-max" with both halves numeric;
//  3. explicit Min and Max both numeric.
//
// When no rule succeeds the specification simply has no numeric view.
func extractNumeric(spec Spec) (Numeric, bool) {
	if v, ok := ParseNumber(spec.Value); ok {
		num := Numeric{Value: v, Unit: spec.Unit, Min: v, Max: v}
		if lo, ok := ParseNumber(spec.Min); ok {
			num.Min = lo
		}
		if hi, ok := ParseNumber(spec.Max); ok {
			num.Max = hi
		}
		return num, true
	}

	if lo, hi, ok := splitRange(spec.Range); ok {
		return Numeric{Value: (lo + hi) / 2, Unit: spec.Unit, Min: lo, Max: hi}, true
	}

	lo, okLo := ParseNumber(spec.Min)
	hi, okHi := ParseNumber(spec.Max)
	if okLo && okHi {
		return Numeric{Value: (lo + hi) / 2, Unit: spec.Unit, Min: lo, Max: hi}, true
	}

	return Numeric{}, false
}

// ParseNumber strips every character that is not a digit, a decimal point or
// a minus sign, then parses the remainder as a float. Units and currency
// symbols are expected noise in specification strings, so "120 mm", "±5" and
// "$1,200" yield 120, 5 and 1200. The stripping is intentionally lossy.
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// splitRange parses a "min-max" string. Multi-hyphen strings such as
// "-10-20" stay ambiguous and fail to parse, mirroring how the catalog data
// has always been interpreted.
func splitRange(r string) (float64, float64, bool) {
	lo, hi, found := strings.Cut(r, "-")
	if !found {
		return 0, 0, false
	}
	min, okLo := ParseNumber(lo)
	max, okHi := ParseNumber(hi)
	if !okLo || !okHi {
		return 0, 0, false
	}
	return min, max, true
}
