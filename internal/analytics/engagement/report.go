package engagement

import (
	"time"

	"github.com/classpulse/classpulse/internal/analytics"
)

// Summary holds the scalar statistics of a report
type Summary struct {
	BasicStats
	TotalPoints int `json:"total_points"`
	Duration
	AttentionScore      int     `json:"attention_score"`
	FocusTimePercentage float64 `json:"focus_time_percentage"`
	Volatility          float64 `json:"volatility"`
}

// CriticalMoments holds the display slices of detected events. The Total* counts always
// reflect the full detected sets, not the truncated slices.
type CriticalMoments struct {
	Dropoffs          []Dropoff          `json:"dropoffs"`
	PeakPeriods       []PeakPeriod       `json:"peak_periods"`
	DistractionSpikes []DistractionSpike `json:"distraction_spikes"`
	TotalDropoffs     int                `json:"total_dropoffs"`
	TotalPeaks        int                `json:"total_peaks"`
	TotalSpikes       int                `json:"total_spikes"`
}

// SustainedEngagement holds sustained periods and their high/low partition
type SustainedEngagement struct {
	SustainedPeriods     []SustainedPeriod `json:"sustained_periods"`
	HighFocusSegments    []SustainedPeriod `json:"high_focus_segments"`
	LowAttentionSegments []SustainedPeriod `json:"low_attention_segments"`
}

// Diagnostics lists the local failures that were skipped while composing the report
type Diagnostics struct {
	SkippedPeriods []SkippedPeriod `json:"skipped_periods,omitempty"`
	DurationError  string          `json:"duration_error,omitempty"`
}

// Empty reports whether nothing was skipped
func (d Diagnostics) Empty() bool {
	return len(d.SkippedPeriods) == 0 && d.DurationError == ""
}

// AnalyticsResult is the composed analytics report for one session timeline
type AnalyticsResult struct {
	Summary             Summary             `json:"summary"`
	Distribution        Distribution        `json:"distribution"`
	CriticalMoments     CriticalMoments     `json:"critical_moments"`
	SustainedEngagement SustainedEngagement `json:"sustained_engagement"`
	Timeline            analytics.Timeline  `json:"timeline"`
	ComputedAt          time.Time           `json:"computed_at"`
	Diagnostics         Diagnostics         `json:"diagnostics"`
}

// AdvancedAnalytics is the compact attention bundle served alongside the full report
type AdvancedAnalytics struct {
	AttentionScore      int                `json:"attention_score"`
	FocusTimePercentage float64            `json:"focus_time_percentage"`
	DistractionSpikes   []DistractionSpike `json:"distraction_spikes"`
	Volatility          float64            `json:"volatility"`
	SustainedPeriods    []SustainedPeriod  `json:"sustained_periods"`
}

// Engine composes every analysis over one timeline
type Engine struct {
	config Config
	now    func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used for ComputedAt
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine; zero config fields take their defaults.
func NewEngine(config Config, opts ...Option) *Engine {
	e := &Engine{
		config: config.Normalize(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Analyze runs every analysis over samples and assembles the report. It never fails;
// samples is not modified.
func (e *Engine) Analyze(samples []Sample) *AnalyticsResult {
	cfg := e.config

	basic := CalculateBasicStats(samples)
	duration, durationErr := measureDuration(samples)
	dropoffs := DetectDropoffs(samples, cfg.DropThreshold)
	peaks := FindPeakPeriods(samples, cfg.PeakWindow)
	spikes := DetectDistractionSpikes(samples, cfg.DropThreshold)
	sustained := FindSustainedPeriods(samples, cfg.MinSustainedSec)

	result := &AnalyticsResult{
		Summary: Summary{
			BasicStats:          basic,
			TotalPoints:         len(samples),
			Duration:            duration,
			AttentionScore:      CalculateAttentionScore(samples),
			FocusTimePercentage: CalculateFocusTimePercentage(samples),
			Volatility:          CalculateVolatility(samples),
		},
		Distribution: CalculateDistribution(samples),
		CriticalMoments: CriticalMoments{
			Dropoffs:          head(dropoffs, cfg.TopDropoffs),
			PeakPeriods:       head(peaks, cfg.TopPeaks),
			DistractionSpikes: head(spikes, cfg.TopSpikes),
			TotalDropoffs:     len(dropoffs),
			TotalPeaks:        len(peaks),
			TotalSpikes:       len(spikes),
		},
		SustainedEngagement: SustainedEngagement{
			SustainedPeriods:     sustained.Periods,
			HighFocusSegments:    sustained.High(),
			LowAttentionSegments: sustained.Low(),
		},
		Timeline:   copyTimeline(samples),
		ComputedAt: e.now().UTC(),
		Diagnostics: Diagnostics{
			SkippedPeriods: sustained.Skipped,
		},
	}
	if durationErr != nil {
		result.Diagnostics.DurationError = durationErr.Error()
	}

	return result
}

// Advanced returns the compact attention bundle for samples.
func (e *Engine) Advanced(samples []Sample) *AdvancedAnalytics {
	return &AdvancedAnalytics{
		AttentionScore:      CalculateAttentionScore(samples),
		FocusTimePercentage: CalculateFocusTimePercentage(samples),
		DistractionSpikes:   DetectDistractionSpikes(samples, e.config.DropThreshold),
		Volatility:          CalculateVolatility(samples),
		SustainedPeriods:    FindSustainedPeriods(samples, e.config.MinSustainedSec).Periods,
	}
}

// Analyze runs a default-configured engine over samples.
func Analyze(samples []Sample) *AnalyticsResult {
	return NewEngine(DefaultConfig()).Analyze(samples)
}

// EmptyResult returns the zero report with its duration taken from elsewhere
// (typically session start/end when no samples were recorded).
func EmptyResult(duration Duration, computedAt time.Time) *AnalyticsResult {
	result := NewEngine(DefaultConfig(), WithClock(func() time.Time { return computedAt })).Analyze(nil)
	result.Summary.Duration = duration
	return result
}

// head returns at most n leading items
func head[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func copyTimeline(samples []Sample) analytics.Timeline {
	tl := make(analytics.Timeline, len(samples))
	copy(tl, samples)
	return tl
}
