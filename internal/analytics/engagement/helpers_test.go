package engagement

import (
	"math"
	"time"
)

var baseTime = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// createTestSamples builds samples spaced step apart, with naive ISO timestamps.
func createTestSamples(values []float64, step time.Duration) []Sample {
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = Sample{
			Timestamp: baseTime.Add(time.Duration(i) * step).Format("2006-01-02T15:04:05"),
			Score:     v,
		}
	}
	return samples
}

func repeat(v float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
