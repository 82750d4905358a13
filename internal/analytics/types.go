// Package analytics provides common types and utilities for engagement timeline analytics.
package analytics

import (
	"math"
)

// Sample represents a single engagement observation for one session.
// Timestamp is kept exactly as the producer sent it (ISO-8601, with or without zone);
// parsing happens only where a duration is required.
type Sample struct {
	Timestamp string  `json:"timestamp"`
	Score     float64 `json:"score"`
}

// Timeline represents an ordered collection of samples
type Timeline []Sample

// Scores extracts just the scores from the timeline
func (tl Timeline) Scores() []float64 {
	scores := make([]float64, len(tl))
	for i, s := range tl {
		scores[i] = s.Score
	}
	return scores
}

// Timestamps extracts just the raw timestamps from the timeline
func (tl Timeline) Timestamps() []string {
	ts := make([]string, len(tl))
	for i, s := range tl {
		ts[i] = s.Timestamp
	}
	return ts
}

// Len returns the number of samples
func (tl Timeline) Len() int {
	return len(tl)
}

// Mean calculates the mean of all scores
func (tl Timeline) Mean() float64 {
	if len(tl) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range tl {
		sum += s.Score
	}
	return sum / float64(len(tl))
}

// StdDev calculates the population standard deviation of all scores.
func (tl Timeline) StdDev() float64 {
	if len(tl) == 0 {
		return 0
	}
	mean := tl.Mean()
	sumSq := 0.0
	for _, s := range tl {
		diff := s.Score - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(tl)))
}

// Min returns the lowest score, or 0 for an empty timeline
func (tl Timeline) Min() float64 {
	if len(tl) == 0 {
		return 0
	}
	lowest := tl[0].Score
	for _, s := range tl[1:] {
		if s.Score < lowest {
			lowest = s.Score
		}
	}
	return lowest
}

// Max returns the highest score, or 0 for an empty timeline
func (tl Timeline) Max() float64 {
	if len(tl) == 0 {
		return 0
	}
	highest := tl[0].Score
	for _, s := range tl[1:] {
		if s.Score > highest {
			highest = s.Score
		}
	}
	return highest
}

// Round rounds v to the given number of decimal places (half away from zero).
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
