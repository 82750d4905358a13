package engagement

import (
	"fmt"
)

// Duration is the wall-clock span between the first and last sample
type Duration struct {
	Seconds   int    `json:"duration_seconds"`
	Minutes   int    `json:"duration_minutes"`
	Formatted string `json:"duration_formatted"`
}

// NewDuration builds a Duration from whole seconds. Negative input is clamped to 0.
func NewDuration(seconds int) Duration {
	if seconds < 0 {
		seconds = 0
	}
	return Duration{
		Seconds:   seconds,
		Minutes:   seconds / 60,
		Formatted: fmt.Sprintf("%dm %ds", seconds/60, seconds%60),
	}
}

// CalculateDuration returns the span from the first to the last sample. Empty input,
// unparseable timestamps and out-of-order endpoints all yield a zero duration.
func CalculateDuration(samples []Sample) Duration {
	d, _ := measureDuration(samples)
	return d
}

// measureDuration is CalculateDuration that also reports why a zero duration was returned.
func measureDuration(samples []Sample) (Duration, error) {
	if len(samples) == 0 {
		return NewDuration(0), nil
	}
	seconds, err := secondsBetween(samples[0].Timestamp, samples[len(samples)-1].Timestamp)
	if err != nil {
		return NewDuration(0), err
	}
	return NewDuration(seconds), nil
}
