// Package downsampling thins engagement timelines for display while keeping their shape.
package downsampling

import (
	"fmt"
	"math"

	"github.com/classpulse/classpulse/internal/analytics"
)

// Mode selects the thinning algorithm
type Mode string

const (
	// ModeNone returns the timeline untouched
	ModeNone Mode = "none"
	// ModeAuto picks an algorithm from the timeline's spikiness
	ModeAuto Mode = "auto"
	// ModeLTTB uses Largest-Triangle-Three-Buckets
	ModeLTTB Mode = "lttb"
	// ModeMinMax keeps the lowest and highest sample per bucket, so dropoffs survive
	ModeMinMax Mode = "minmax"
	// ModeAverage replaces each bucket by its mean score
	ModeAverage Mode = "avg"
	// ModeM4 keeps first, min, max and last per bucket
	ModeM4 Mode = "m4"
)

// MinPoints is the smallest useful target size
const MinPoints = 3

// ValidModes returns all valid modes
func ValidModes() []Mode {
	return []Mode{ModeNone, ModeAuto, ModeLTTB, ModeMinMax, ModeAverage, ModeM4}
}

// IsValid checks if a mode string is valid
func IsValid(mode string) bool {
	for _, m := range ValidModes() {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// Thin reduces samples to roughly maxPoints. Timelines already at or under the target,
// and maxPoints <= 0, come back unchanged. Input order is preserved.
func Thin(samples []analytics.Sample, mode Mode, maxPoints int) ([]analytics.Sample, error) {
	if !IsValid(string(mode)) {
		return nil, fmt.Errorf("unknown downsampling mode: %s", mode)
	}
	if mode == ModeNone || maxPoints <= 0 || len(samples) <= maxPoints {
		return samples, nil
	}
	if maxPoints < MinPoints {
		maxPoints = MinPoints
	}

	scores := make([]float64, len(samples))
	for i, s := range samples {
		scores[i] = s.Score
	}

	if mode == ModeAuto {
		mode = detectBestAlgorithm(scores)
	}

	var picked []int
	switch mode {
	case ModeLTTB:
		picked = lttb(scores, maxPoints)
	case ModeMinMax:
		picked = minmax(scores, maxPoints)
	case ModeM4:
		picked = m4(scores, maxPoints)
	case ModeAverage:
		return average(samples, maxPoints), nil
	}

	out := make([]analytics.Sample, len(picked))
	for i, idx := range picked {
		out[i] = samples[idx]
	}
	return out, nil
}

// detectBestAlgorithm prefers minmax for spiky timelines, m4 for moderately spiky
// ones and lttb for smooth ones
func detectBestAlgorithm(scores []float64) Mode {
	spikiness := calculateSpikiness(scores)
	switch {
	case spikiness > 0.2:
		return ModeMinMax
	case spikiness > 0.1:
		return ModeM4
	default:
		return ModeLTTB
	}
}

// calculateSpikiness is a weighted share of outliers and sharp steps, in [0, 1]
func calculateSpikiness(scores []float64) float64 {
	n := len(scores)
	if n < 10 {
		return 0
	}

	mean := 0.0
	for _, v := range scores {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range scores {
		variance += (v - mean) * (v - mean)
	}
	stdDev := math.Sqrt(variance / float64(n))
	if stdDev == 0 {
		return 0
	}

	outliers, steps := 0, 0
	for i, v := range scores {
		if math.Abs(v-mean) > 2*stdDev {
			outliers++
		}
		if i > 0 && math.Abs(v-scores[i-1]) > stdDev {
			steps++
		}
	}

	spikiness := (float64(outliers)/float64(n) + 1.5*float64(steps)/float64(n-1)) / 2.5
	return math.Min(spikiness, 1)
}

// bucket returns the half-open range of bucket i out of n over size items
func bucket(i, n, size int) (int, int) {
	width := float64(size) / float64(n)
	start := int(float64(i) * width)
	end := int(float64(i+1) * width)
	if end > size {
		end = size
	}
	return start, end
}

// extremes returns the indices of the lowest and highest score in [start, end)
func extremes(scores []float64, start, end int) (int, int) {
	lo, hi := start, start
	for j := start + 1; j < end; j++ {
		if scores[j] < scores[lo] {
			lo = j
		}
		if scores[j] > scores[hi] {
			hi = j
		}
	}
	return lo, hi
}

func lttb(scores []float64, target int) []int {
	n := len(scores)
	picked := make([]int, 0, target)
	picked = append(picked, 0)

	width := float64(n-2) / float64(target-2)
	prev := 0

	for i := 0; i < target-2; i++ {
		nextStart := int(math.Floor(float64(i+1)*width)) + 1
		nextEnd := int(math.Floor(float64(i+2)*width)) + 1
		if nextEnd > n {
			nextEnd = n
		}

		avgX, avgY := 0.0, 0.0
		for j := nextStart; j < nextEnd; j++ {
			avgX += float64(j)
			avgY += scores[j]
		}
		if count := float64(nextEnd - nextStart); count > 0 {
			avgX /= count
			avgY /= count
		}

		from := int(math.Floor(float64(i)*width)) + 1
		to := int(math.Floor(float64(i+1)*width)) + 1

		best, bestArea := from, -1.0
		for j := from; j < to; j++ {
			area := math.Abs((float64(prev)-avgX)*(scores[j]-scores[prev])-
				(float64(prev)-float64(j))*(avgY-scores[prev])) / 2
			if area > bestArea {
				best, bestArea = j, area
			}
		}

		picked = append(picked, best)
		prev = best
	}

	return append(picked, n-1)
}

func minmax(scores []float64, target int) []int {
	buckets := max(target/2, 1)
	picked := make([]int, 0, buckets*2)

	for i := 0; i < buckets; i++ {
		start, end := bucket(i, buckets, len(scores))
		if start >= end {
			continue
		}
		lo, hi := extremes(scores, start, end)
		switch {
		case lo == hi:
			picked = append(picked, lo)
		case lo < hi:
			picked = append(picked, lo, hi)
		default:
			picked = append(picked, hi, lo)
		}
	}
	return picked
}

func m4(scores []float64, target int) []int {
	buckets := max(target/4, 1)
	picked := make([]int, 0, buckets*4)

	for i := 0; i < buckets; i++ {
		start, end := bucket(i, buckets, len(scores))
		if start >= end {
			continue
		}
		first, last := start, end-1
		lo, hi := extremes(scores, start, end)
		if lo > hi {
			lo, hi = hi, lo
		}

		picked = append(picked, first)
		for _, idx := range []int{lo, hi, last} {
			if idx != picked[len(picked)-1] {
				picked = append(picked, idx)
			}
		}
	}
	return picked
}

// average emits one sample per bucket, stamped with the bucket's middle timestamp
func average(samples []analytics.Sample, target int) []analytics.Sample {
	out := make([]analytics.Sample, 0, target)
	for i := 0; i < target; i++ {
		start, end := bucket(i, target, len(samples))
		if start >= end {
			continue
		}
		sum := 0.0
		for _, s := range samples[start:end] {
			sum += s.Score
		}
		out = append(out, analytics.Sample{
			Timestamp: samples[start+(end-start)/2].Timestamp,
			Score:     analytics.Round(sum/float64(end-start), 3),
		})
	}
	return out
}
