package engagement

import (
	"github.com/classpulse/classpulse/internal/analytics"
)

// PeriodType tags a sustained period as high or low engagement
type PeriodType string

const (
	PeriodHigh PeriodType = "high" // score > FocusThreshold
	PeriodLow  PeriodType = "low"  // score <= FocusThreshold
)

// SustainedPeriod is a maximal run of same-class samples lasting at least the minimum duration
type SustainedPeriod struct {
	Type          PeriodType `json:"type"`
	Start         string     `json:"start"`
	DurationSec   int        `json:"duration_sec"`
	AvgEngagement float64    `json:"avg_engagement"`
	PointsCount   int        `json:"points_count"`
}

// SkippedPeriod marks a run that could not be measured because one of its boundary
// timestamps did not parse. The run is left out of the result; segmentation continues.
type SkippedPeriod struct {
	Type        PeriodType `json:"type"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	PointsCount int        `json:"points_count"`
	Reason      string     `json:"reason"`
}

// SustainedResult is the output of FindSustainedPeriods
type SustainedResult struct {
	Periods []SustainedPeriod `json:"periods"`
	Skipped []SkippedPeriod   `json:"skipped,omitempty"`
}

// High returns the high-engagement periods in chronological order
func (r SustainedResult) High() []SustainedPeriod {
	return r.ofType(PeriodHigh)
}

// Low returns the low-engagement periods in chronological order
func (r SustainedResult) Low() []SustainedPeriod {
	return r.ofType(PeriodLow)
}

func (r SustainedResult) ofType(kind PeriodType) []SustainedPeriod {
	periods := make([]SustainedPeriod, 0)
	for _, p := range r.Periods {
		if p.Type == kind {
			periods = append(periods, p)
		}
	}
	return periods
}

func classify(score float64) PeriodType {
	if score > FocusThreshold {
		return PeriodHigh
	}
	return PeriodLow
}

// openRun is the IN_PERIOD state of the segmenter. A nil *openRun is NO_CURRENT_PERIOD.
type openRun struct {
	kind     PeriodType
	startIdx int
	sum      float64
	count    int
}

// closeOutcome is the result of closing one run: exactly one of emitted/skipped is set,
// or neither when the run was shorter than the minimum duration.
type closeOutcome struct {
	emitted *SustainedPeriod
	skipped *SkippedPeriod
}

// closeRun measures the run that ends at samples[endIdx].
func closeRun(samples []Sample, run *openRun, endIdx, minDurationSec int) closeOutcome {
	start := samples[run.startIdx].Timestamp
	end := samples[endIdx].Timestamp

	duration, err := secondsBetween(start, end)
	if err != nil {
		return closeOutcome{skipped: &SkippedPeriod{
			Type:        run.kind,
			Start:       start,
			End:         end,
			PointsCount: run.count,
			Reason:      err.Error(),
		}}
	}
	if duration < minDurationSec {
		return closeOutcome{}
	}

	return closeOutcome{emitted: &SustainedPeriod{
		Type:          run.kind,
		Start:         start,
		DurationSec:   duration,
		AvgEngagement: analytics.Round(run.sum/float64(run.count), 2),
		PointsCount:   run.count,
	}}
}

// FindSustainedPeriods run-length encodes the timeline into alternating high/low runs and
// keeps those lasting at least minDurationSec seconds, measured from the run's first sample
// to its last. Shorter runs are dropped, not merged into neighbours. Runs whose boundary
// timestamps cannot be parsed are reported in Skipped. A negative minDurationSec is treated
// as 0, so reported durations are never negative.
func FindSustainedPeriods(samples []Sample, minDurationSec int) SustainedResult {
	if minDurationSec < 0 {
		minDurationSec = 0
	}

	result := SustainedResult{Periods: make([]SustainedPeriod, 0)}
	record := func(out closeOutcome) {
		if out.emitted != nil {
			result.Periods = append(result.Periods, *out.emitted)
		}
		if out.skipped != nil {
			result.Skipped = append(result.Skipped, *out.skipped)
		}
	}

	var run *openRun
	for i, s := range samples {
		kind := classify(s.Score)

		switch {
		case run == nil:
			run = &openRun{kind: kind, startIdx: i}
		case run.kind != kind:
			record(closeRun(samples, run, i-1, minDurationSec))
			run = &openRun{kind: kind, startIdx: i}
		}

		run.sum += s.Score
		run.count++
	}

	if run != nil {
		record(closeRun(samples, run, len(samples)-1, minDurationSec))
	}

	return result
}
