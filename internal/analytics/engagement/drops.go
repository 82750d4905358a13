package engagement

import (
	"sort"

	"github.com/classpulse/classpulse/internal/analytics"
)

// Severity classifies a distraction spike
type Severity string

const (
	SeverityHigh   Severity = "high"   // drop >= HighSeverityDrop
	SeverityMedium Severity = "medium" // threshold <= drop < HighSeverityDrop
)

// DistractionSpike is a qualifying consecutive-sample decrease, reported in time order
type DistractionSpike struct {
	Timestamp string   `json:"timestamp"`
	Drop      float64  `json:"drop"`
	Severity  Severity `json:"severity"`
	FromScore float64  `json:"from_score"`
	ToScore   float64  `json:"to_score"`
}

// Dropoff is a qualifying consecutive-sample decrease, reported largest first
type Dropoff struct {
	Timestamp string  `json:"timestamp"`
	FromScore float64 `json:"from_score"`
	ToScore   float64 `json:"to_score"`
	Drop      float64 `json:"drop"`
}

// drop describes one qualifying pair (i-1, i)
type drop struct {
	index int
	from  float64
	to    float64
	size  float64
}

// scanDrops walks consecutive pairs and returns every pair whose decrease meets threshold.
func scanDrops(samples []Sample, threshold float64) []drop {
	if len(samples) < 2 {
		return nil
	}

	var drops []drop
	for i := 1; i < len(samples); i++ {
		from := samples[i-1].Score
		to := samples[i].Score
		size := from - to
		if size >= threshold {
			drops = append(drops, drop{index: i, from: from, to: to, size: size})
		}
	}
	return drops
}

// DetectDistractionSpikes returns qualifying drops in input (chronological) order,
// each tagged with a severity. Fewer than 2 samples yields an empty list.
func DetectDistractionSpikes(samples []Sample, threshold float64) []DistractionSpike {
	drops := scanDrops(samples, threshold)
	spikes := make([]DistractionSpike, 0, len(drops))
	for _, d := range drops {
		severity := SeverityMedium
		if d.size >= HighSeverityDrop {
			severity = SeverityHigh
		}
		spikes = append(spikes, DistractionSpike{
			Timestamp: samples[d.index].Timestamp,
			Drop:      analytics.Round(d.size, 3),
			Severity:  severity,
			FromScore: analytics.Round(d.from, 3),
			ToScore:   analytics.Round(d.to, 3),
		})
	}
	return spikes
}

// DetectDropoffs returns the same qualifying drops as DetectDistractionSpikes, ranked by
// drop magnitude, largest first. Equal drops keep their chronological order.
func DetectDropoffs(samples []Sample, threshold float64) []Dropoff {
	drops := scanDrops(samples, threshold)
	dropoffs := make([]Dropoff, 0, len(drops))
	for _, d := range drops {
		dropoffs = append(dropoffs, Dropoff{
			Timestamp: samples[d.index].Timestamp,
			FromScore: analytics.Round(d.from, 3),
			ToScore:   analytics.Round(d.to, 3),
			Drop:      analytics.Round(d.size, 3),
		})
	}

	sort.SliceStable(dropoffs, func(i, j int) bool {
		return dropoffs[i].Drop > dropoffs[j].Drop
	})
	return dropoffs
}
