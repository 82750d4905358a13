package engagement

import (
	"github.com/classpulse/classpulse/internal/analytics"
)

// Distribution is the share of samples in each engagement band, rounded to 3 decimals
type Distribution struct {
	Low    float64 `json:"low_engagement"`
	Medium float64 `json:"medium_engagement"`
	High   float64 `json:"high_engagement"`
}

// CalculateDistribution buckets samples into low (< 0.33), medium ([0.33, 0.67)) and
// high (>= 0.67). Empty input yields all zeros.
func CalculateDistribution(samples []Sample) Distribution {
	if len(samples) == 0 {
		return Distribution{}
	}

	var low, medium, high int
	for _, s := range samples {
		switch {
		case s.Score < DistributionLowUpper:
			low++
		case s.Score < DistributionHighLower:
			medium++
		default:
			high++
		}
	}

	total := float64(len(samples))
	return Distribution{
		Low:    analytics.Round(float64(low)/total, 3),
		Medium: analytics.Round(float64(medium)/total, 3),
		High:   analytics.Round(float64(high)/total, 3),
	}
}
