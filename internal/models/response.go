package models

import (
	"time"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/analytics/engagement"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SessionResponse represents session metadata response
type SessionResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Subject    string  `json:"subject,omitempty"`
	TeacherID  string  `json:"teacher_id"`
	ShareCode  string  `json:"share_code"`
	Status     string  `json:"status"`
	StartedAt  string  `json:"started_at"`
	EndedAt    *string `json:"ended_at,omitempty"`
	LastSeenAt string  `json:"last_seen_at"`
}

// SessionListResponse represents list sessions response
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}

// AppendSamplesResponse represents sample append response
type AppendSamplesResponse struct {
	SessionID string `json:"session_id"`
	Accepted  int    `json:"accepted"`
}

// SamplesResponse represents a timeline page for polling clients
type SamplesResponse struct {
	SessionID string             `json:"session_id"`
	Samples   []analytics.Sample `json:"samples"`
	Count     int                `json:"count"`
	// Cursor is the timestamp to pass as "since" on the next poll
	Cursor string `json:"cursor,omitempty"`
}

// SessionSummaryResponse holds the basic session statistics
type SessionSummaryResponse struct {
	SessionID       string  `json:"session_id"`
	Average         float64 `json:"average_engagement"`
	Max             float64 `json:"max_engagement"`
	Min             float64 `json:"min_engagement"`
	TotalPoints     int     `json:"total_points"`
	DurationSeconds int     `json:"duration_seconds"`
}

// TeacherSessionSummary is one ended session on the teacher dashboard
type TeacherSessionSummary struct {
	SessionResponse
	DurationSeconds int                 `json:"duration_seconds"`
	PointCount      int                 `json:"point_count"`
	AvgEngagement   float64             `json:"avg_engagement"`
	MaxEngagement   float64             `json:"max_engagement"`
	AnalyticsReady  bool                `json:"analytics_ready"`
	ComputedAt      *string             `json:"analytics_computed_at,omitempty"`
	Summary         DashboardStatistics `json:"summary"`
}

// DashboardStatistics are the headline figures shown per session
type DashboardStatistics struct {
	AttentionScore      int     `json:"attention_score"`
	FocusTimePercentage float64 `json:"focus_time_percentage"`
	AvgEngagement       float64 `json:"avg_engagement"`
	TotalPoints         int     `json:"total_points"`
}

// TeacherSummaryResponse lists a teacher's ended sessions, newest first
type TeacherSummaryResponse struct {
	TeacherID string                  `json:"teacher_id"`
	Sessions  []TeacherSessionSummary `json:"sessions"`
	Count     int                     `json:"count"`
}

// AdvancedAnalyticsResponse wraps the compact attention bundle
type AdvancedAnalyticsResponse struct {
	SessionID string `json:"session_id"`
	*engagement.AdvancedAnalytics
}

// ReportResponse is the post-session report
type ReportResponse struct {
	Session   SessionResponse             `json:"session"`
	Analytics *engagement.AnalyticsResult `json:"analytics"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FormatTime renders t the way every response does
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
