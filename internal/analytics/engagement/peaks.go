package engagement

import (
	"sort"

	"github.com/classpulse/classpulse/internal/analytics"
)

// PeakPeriod is a window of samples whose average engagement exceeds PeakThreshold.
// EndIdx is exclusive.
type PeakPeriod struct {
	StartIdx      int     `json:"start_idx"`
	EndIdx        int     `json:"end_idx"`
	AvgEngagement float64 `json:"avg_engagement"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
}

// FindPeakPeriods slides a fixed-size window one sample at a time and reports every
// window whose average exceeds PeakThreshold. Overlapping windows are reported
// independently; a single long high-engagement span therefore yields several peaks.
// The result is sorted by average engagement, highest first. A non-positive window
// falls back to DefaultPeakWindow; fewer samples than the window yields an empty list.
func FindPeakPeriods(samples []Sample, window int) []PeakPeriod {
	if window <= 0 {
		window = DefaultPeakWindow
	}
	peaks := make([]PeakPeriod, 0)
	if len(samples) < window {
		return peaks
	}

	for start := 0; start+window <= len(samples); start++ {
		avg := windowMean(samples[start : start+window])
		if avg > PeakThreshold {
			peaks = append(peaks, PeakPeriod{
				StartIdx:      start,
				EndIdx:        start + window,
				AvgEngagement: analytics.Round(avg, 3),
				StartTime:     samples[start].Timestamp,
				EndTime:       samples[start+window-1].Timestamp,
			})
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].AvgEngagement > peaks[j].AvgEngagement
	})
	return peaks
}

func windowMean(window []Sample) float64 {
	return analytics.Timeline(window).Mean()
}
