// Package engagement derives attention metrics from a session's engagement timeline.
//
// Every function in this package is pure: it reads the samples it is given, never
// mutates them, performs no I/O and keeps no state between calls. All functions are
// total; empty or malformed input degrades to documented zero values instead of errors,
// so the package is safe to call concurrently from any number of request handlers.
//
// Samples are processed in the order supplied. Callers are expected to pass them in
// ascending timestamp order.
package engagement

import (
	"github.com/classpulse/classpulse/internal/analytics"
)

// Sample is an alias to the shared analytics.Sample type.
type Sample = analytics.Sample

// Classification thresholds. They are part of the report contract and are not configurable.
const (
	// FocusThreshold is the score a sample must strictly exceed to count as focused
	// (and as "high" for sustained-period segmentation).
	FocusThreshold = 0.7

	// PeakThreshold is the window average a peak window must strictly exceed.
	PeakThreshold = 0.75

	// HighSeverityDrop is the drop at or above which a distraction spike is "high".
	HighSeverityDrop = 0.5

	// DistributionLowUpper and DistributionHighLower bound the three distribution bands:
	// low < 0.33 <= medium < 0.67 <= high.
	DistributionLowUpper  = 0.33
	DistributionHighLower = 0.67
)

// Defaults used when a Config field is left at zero.
const (
	DefaultDropThreshold   = 0.3
	DefaultPeakWindow      = 5
	DefaultMinSustainedSec = 60
	DefaultTopDropoffs     = 5
	DefaultTopPeaks        = 3
	DefaultTopSpikes       = 5
)

// Config holds the tunable parameters of the engine
type Config struct {
	// DropThreshold is the minimum consecutive-sample decrease reported as a dropoff/spike
	DropThreshold float64

	// PeakWindow is the sliding window size (in samples) for peak detection
	PeakWindow int

	// MinSustainedSec is the minimum duration of a reported sustained period
	MinSustainedSec int

	// TopDropoffs, TopPeaks and TopSpikes cap the lists shown in critical moments
	TopDropoffs int
	TopPeaks    int
	TopSpikes   int
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{
		DropThreshold:   DefaultDropThreshold,
		PeakWindow:      DefaultPeakWindow,
		MinSustainedSec: DefaultMinSustainedSec,
		TopDropoffs:     DefaultTopDropoffs,
		TopPeaks:        DefaultTopPeaks,
		TopSpikes:       DefaultTopSpikes,
	}
}

// Normalize replaces non-positive fields with their defaults.
func (c Config) Normalize() Config {
	d := DefaultConfig()
	if c.DropThreshold <= 0 {
		c.DropThreshold = d.DropThreshold
	}
	if c.PeakWindow <= 0 {
		c.PeakWindow = d.PeakWindow
	}
	if c.MinSustainedSec <= 0 {
		c.MinSustainedSec = d.MinSustainedSec
	}
	if c.TopDropoffs <= 0 {
		c.TopDropoffs = d.TopDropoffs
	}
	if c.TopPeaks <= 0 {
		c.TopPeaks = d.TopPeaks
	}
	if c.TopSpikes <= 0 {
		c.TopSpikes = d.TopSpikes
	}
	return c
}
