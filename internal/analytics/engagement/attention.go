package engagement

import (
	"github.com/classpulse/classpulse/internal/analytics"
)

// Attention score bands. Lower bounds are inclusive.
var attentionBands = []struct {
	lower float64
	score int
}{
	{0.8, 100},
	{0.6, 75},
	{0.4, 50},
}

// AttentionScoreFloor is returned for any non-empty timeline whose mean is below 0.4.
const AttentionScoreFloor = 25

// CalculateAttentionScore maps the mean score onto the coarse 0/25/50/75/100 scale.
// Empty input yields 0.
func CalculateAttentionScore(samples []Sample) int {
	if len(samples) == 0 {
		return 0
	}

	avg := analytics.Timeline(samples).Mean()
	for _, band := range attentionBands {
		if avg >= band.lower {
			return band.score
		}
	}
	return AttentionScoreFloor
}

// CalculateFocusTimePercentage returns the share of samples with score strictly above
// FocusThreshold, as a percentage rounded to one decimal. Empty input yields 0.
func CalculateFocusTimePercentage(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	focused := 0
	for _, s := range samples {
		if s.Score > FocusThreshold {
			focused++
		}
	}
	return analytics.Round(float64(focused)/float64(len(samples))*100, 1)
}
