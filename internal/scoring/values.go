package scoring

import "reflect"

// toFloat converts the numeric representations a JSON decode or a caller can
// hand us into a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// toStringSlice converts a multiChoice answer value into its selected option
// values. JSON decodes arrays as []any; callers constructing answers in Go
// tend to use []string.
func toStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}

// valueEquals compares a submitted answer value against a dependency's
// expected value. Numbers compare numerically regardless of their concrete
// type so that a JSON float64 matches an int authored in code.
func valueEquals(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
