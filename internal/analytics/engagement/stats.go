package engagement

import (
	"github.com/classpulse/classpulse/internal/analytics"
)

// BasicStats holds scalar statistics over the scores of a timeline
type BasicStats struct {
	AvgScore float64 `json:"avg_score"`
	StdScore float64 `json:"std_score"`
	MinScore float64 `json:"min_score"`
	MaxScore float64 `json:"max_score"`
}

// CalculateBasicStats returns mean, population standard deviation, min and max of the
// scores. Empty input yields all zeros.
func CalculateBasicStats(samples []Sample) BasicStats {
	tl := analytics.Timeline(samples)
	return BasicStats{
		AvgScore: tl.Mean(),
		StdScore: tl.StdDev(),
		MinScore: tl.Min(),
		MaxScore: tl.Max(),
	}
}

// CalculateVolatility returns the population standard deviation of the scores rounded to
// 3 decimals. It is the same measure as BasicStats.StdScore, so the two never disagree.
func CalculateVolatility(samples []Sample) float64 {
	return analytics.Round(analytics.Timeline(samples).StdDev(), 3)
}
