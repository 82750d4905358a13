package models

import (
	"github.com/classpulse/classpulse/internal/analytics"
)

// CreateSessionRequest represents create session request
type CreateSessionRequest struct {
	Title     string `json:"title" validate:"required,max=256"`
	Subject   string `json:"subject,omitempty" validate:"max=128"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

// JoinSessionRequest represents a student joining by share code
type JoinSessionRequest struct {
	ShareCode string `json:"share_code" validate:"required"`
}

// SampleInput is one engagement observation as sent by a client.
// Score accepts a JSON number or a numeric string; Timestamp may be empty.
type SampleInput struct {
	Timestamp string      `json:"timestamp,omitempty"`
	Score     interface{} `json:"score"`
	EAR       *float64    `json:"ear,omitempty"` // Eye aspect ratio reported by the scoring client
}

// AppendSamplesRequest accepts either a single sample or a batch under "samples"
type AppendSamplesRequest struct {
	SampleInput
	Samples []SampleInput `json:"samples,omitempty"`
}

// Items returns the samples carried by the request
func (r *AppendSamplesRequest) Items() []SampleInput {
	if len(r.Samples) > 0 {
		return r.Samples
	}
	if r.Score == nil && r.Timestamp == "" {
		return nil
	}
	return []SampleInput{r.SampleInput}
}

// AnalyticsConfigRequest overrides engine parameters for a stateless analysis.
// Zero fields keep their defaults.
type AnalyticsConfigRequest struct {
	DropThreshold   float64 `json:"drop_threshold,omitempty"`
	PeakWindow      int     `json:"peak_window,omitempty"`
	MinSustainedSec int     `json:"min_sustained_sec,omitempty"`
	TopDropoffs     int     `json:"top_dropoffs,omitempty"`
	TopPeaks        int     `json:"top_peaks,omitempty"`
	TopSpikes       int     `json:"top_spikes,omitempty"`
}

// AnalyzeRequest represents a stateless analytics request
type AnalyzeRequest struct {
	Samples []analytics.Sample      `json:"samples"`
	Config  *AnalyticsConfigRequest `json:"config,omitempty"`
}
