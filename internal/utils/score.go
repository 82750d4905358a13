package utils

import (
	"math"
	"strconv"
	"strings"
)

// ToFloat64 converts various numeric types (and numeric strings) to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ValidScore reports whether v is a finite score within [MinScore, MaxScore]
func ValidScore(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= MinScore && v <= MaxScore
}

// ParseScore converts v and checks it is a valid score
func ParseScore(v interface{}) (float64, bool) {
	f, ok := ToFloat64(v)
	if !ok || !ValidScore(f) {
		return 0, false
	}
	return f, true
}
