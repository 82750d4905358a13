package services

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/store"
)

// AnalyticsService runs the engagement engine over stored session timelines
type AnalyticsService struct {
	logger  *logging.Logger
	store   store.Store
	cache   store.ReportCache
	metrics *metrics.Metrics
	config  engagement.Config
	now     func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	logger *logging.Logger,
	st store.Store,
	cache store.ReportCache,
	m *metrics.Metrics,
	cfg engagement.Config,
) *AnalyticsService {
	if cache == nil {
		cache = store.NopReportCache{}
	}
	return &AnalyticsService{
		logger:  logger,
		store:   st,
		cache:   cache,
		metrics: m,
		config:  cfg.Normalize(),
		now:     time.Now,
	}
}

func (s *AnalyticsService) engine() *engagement.Engine {
	return engagement.NewEngine(s.config, engagement.WithClock(s.now))
}

// load fetches a session and its full timeline
func (s *AnalyticsService) load(ctx context.Context, sessionID string) (*store.Session, []analytics.Sample, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fromStoreError(err, sessionID)
	}
	samples, err := s.store.ListSamples(ctx, sessionID, nil)
	if err != nil {
		return nil, nil, fromStoreError(err, sessionID)
	}
	return session, samples, nil
}

// logDiagnostics reports anything the engine had to skip
func (s *AnalyticsService) logDiagnostics(ctx context.Context, sessionID string, result *engagement.AnalyticsResult) {
	diag := result.Diagnostics
	if diag.Empty() {
		return
	}

	logger := logging.FromContext(ctx)
	for _, skipped := range diag.SkippedPeriods {
		logger.Warn("Sustained period skipped",
			"session_id", sessionID,
			"start", skipped.Start,
			"end", skipped.End,
			"error", skipped.Reason)
	}
	if diag.DurationError != "" {
		logger.Warn("Session duration unavailable",
			"session_id", sessionID,
			"error", diag.DurationError)
	}
	s.metrics.AddSkippedPeriods(len(diag.SkippedPeriods))
}

// Analyze returns the full engagement report over the session's current timeline
func (s *AnalyticsService) Analyze(ctx context.Context, sessionID string) (result *engagement.AnalyticsResult, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(metrics.OperationAnalyze, start, err) }()

	_, samples, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result = s.engine().Analyze(samples)
	s.logDiagnostics(ctx, sessionID, result)
	return result, nil
}

// Summary returns basic session statistics. Duration runs from the session start to its
// end, or to now for a live session.
func (s *AnalyticsService) Summary(ctx context.Context, sessionID string) (resp *models.SessionSummaryResponse, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(metrics.OperationSummary, start, err) }()

	session, samples, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stats := engagement.CalculateBasicStats(samples)
	return &models.SessionSummaryResponse{
		SessionID:       sessionID,
		Average:         analytics.Round(stats.AvgScore, 3),
		Max:             analytics.Round(stats.MaxScore, 3),
		Min:             analytics.Round(stats.MinScore, 3),
		TotalPoints:     len(samples),
		DurationSeconds: s.sessionDuration(session).Seconds,
	}, nil
}

// Advanced returns the compact attention bundle for the session
func (s *AnalyticsService) Advanced(ctx context.Context, sessionID string) (result *engagement.AdvancedAnalytics, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(metrics.OperationAdvanced, start, err) }()

	_, samples, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.engine().Advanced(samples), nil
}

// Report returns the post-session report. The session must have ended; the analytics
// part is cached because an ended session's timeline no longer changes.
func (s *AnalyticsService) Report(ctx context.Context, sessionID string) (resp *models.ReportResponse, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(metrics.OperationReport, start, err) }()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fromStoreError(err, sessionID)
	}
	if session.Active() {
		return nil, NewServiceErrorWithDetails(CodeSessionActive, "report is available once the session has ended",
			map[string]interface{}{"session_id": sessionID})
	}

	if cached, ok := s.cache.Get(ctx, sessionID); ok {
		s.metrics.ObserveCache(true)
		return &models.ReportResponse{Session: ToSessionResponse(session), Analytics: cached}, nil
	}
	s.metrics.ObserveCache(false)

	samples, err := s.store.ListSamples(ctx, sessionID, nil)
	if err != nil {
		return nil, fromStoreError(err, sessionID)
	}

	var result *engagement.AnalyticsResult
	if len(samples) == 0 {
		result = engagement.EmptyResult(s.sessionDuration(session), s.now().UTC())
	} else {
		result = s.engine().Analyze(samples)
		s.logDiagnostics(ctx, sessionID, result)
	}

	if err := s.cache.Put(ctx, sessionID, result); err != nil {
		logging.FromContext(ctx).Warn("Failed to cache report",
			"session_id", sessionID,
			"error", err)
	}

	return &models.ReportResponse{Session: ToSessionResponse(session), Analytics: result}, nil
}

// TeacherSummary lists the teacher's ended sessions, most recently ended first, with
// headline figures. A cached report supplies the figures when present; otherwise they
// are computed from the stored timeline without caching.
func (s *AnalyticsService) TeacherSummary(ctx context.Context, teacherID string) (resp *models.TeacherSummaryResponse, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(metrics.OperationTeacherSummary, start, err) }()

	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return nil, NewServiceError(CodeInvalidRequest, "teacher_id is required")
	}

	sessions, err := s.store.ListSessions(ctx, teacherID)
	if err != nil {
		return nil, NewServiceError(CodeStoreError, err.Error())
	}

	ended := make([]*store.Session, 0, len(sessions))
	for _, session := range sessions {
		if !session.Active() {
			ended = append(ended, session)
		}
	}
	sort.SliceStable(ended, func(i, j int) bool {
		return ended[i].EndedAt.After(*ended[j].EndedAt)
	})

	entries := make([]models.TeacherSessionSummary, 0, len(ended))
	for _, session := range ended {
		entry, err := s.dashboardEntry(ctx, session)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return &models.TeacherSummaryResponse{
		TeacherID: teacherID,
		Sessions:  entries,
		Count:     len(entries),
	}, nil
}

func (s *AnalyticsService) dashboardEntry(ctx context.Context, session *store.Session) (models.TeacherSessionSummary, error) {
	entry := models.TeacherSessionSummary{
		SessionResponse: ToSessionResponse(session),
		DurationSeconds: s.sessionDuration(session).Seconds,
	}

	if cached, ok := s.cache.Get(ctx, session.ID); ok {
		s.metrics.ObserveCache(true)
		summary := cached.Summary
		computedAt := models.FormatTime(cached.ComputedAt)
		entry.PointCount = summary.TotalPoints
		entry.AvgEngagement = analytics.Round(summary.AvgScore, 3)
		entry.MaxEngagement = analytics.Round(summary.MaxScore, 3)
		entry.AnalyticsReady = true
		entry.ComputedAt = &computedAt
		entry.Summary = models.DashboardStatistics{
			AttentionScore:      summary.AttentionScore,
			FocusTimePercentage: summary.FocusTimePercentage,
			AvgEngagement:       entry.AvgEngagement,
			TotalPoints:         summary.TotalPoints,
		}
		return entry, nil
	}
	s.metrics.ObserveCache(false)

	samples, err := s.store.ListSamples(ctx, session.ID, nil)
	if err != nil {
		return entry, fromStoreError(err, session.ID)
	}

	stats := engagement.CalculateBasicStats(samples)
	entry.PointCount = len(samples)
	entry.AvgEngagement = analytics.Round(stats.AvgScore, 3)
	entry.MaxEngagement = analytics.Round(stats.MaxScore, 3)
	entry.Summary = models.DashboardStatistics{
		AttentionScore:      engagement.CalculateAttentionScore(samples),
		FocusTimePercentage: engagement.CalculateFocusTimePercentage(samples),
		AvgEngagement:       entry.AvgEngagement,
		TotalPoints:         len(samples),
	}
	return entry, nil
}

// ReportText renders the post-session report as plain text
func (s *AnalyticsService) ReportText(ctx context.Context, sessionID string) (string, error) {
	report, err := s.Report(ctx, sessionID)
	if err != nil {
		return "", err
	}

	text := engagement.RenderSummaryReport(report.Analytics) + "\n\n" +
		engagement.RenderDropoffDetails(report.Analytics)
	return text, nil
}

// AnalyzeSamples runs the engine over caller-supplied samples without touching the store.
// Zero fields of override keep the service configuration.
func (s *AnalyticsService) AnalyzeSamples(samples []analytics.Sample, override *models.AnalyticsConfigRequest) (result *engagement.AnalyticsResult, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(metrics.OperationStateless, start, err) }()

	for i, sample := range samples {
		if math.IsNaN(sample.Score) || math.IsInf(sample.Score, 0) {
			return nil, NewServiceErrorWithDetails(CodeInvalidSample, "score must be finite",
				map[string]interface{}{"index": i})
		}
	}

	cfg := s.config
	if override != nil {
		cfg = mergeConfig(cfg, override)
	}

	return engagement.NewEngine(cfg, engagement.WithClock(s.now)).Analyze(samples), nil
}

// ExportCSV writes the session timeline as "timestamp,score" rows
func (s *AnalyticsService) ExportCSV(ctx context.Context, sessionID string, w io.Writer) error {
	_, samples, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "score"}); err != nil {
		return err
	}
	for _, sample := range samples {
		row := []string{sample.Timestamp, strconv.FormatFloat(sample.Score, 'f', -1, 64)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// sessionDuration measures the session from start to end, or to now while live
func (s *AnalyticsService) sessionDuration(session *store.Session) engagement.Duration {
	end := s.now()
	if session.EndedAt != nil {
		end = *session.EndedAt
	}
	return engagement.NewDuration(int(end.Sub(session.StartedAt) / time.Second))
}

func mergeConfig(cfg engagement.Config, o *models.AnalyticsConfigRequest) engagement.Config {
	if o.DropThreshold > 0 {
		cfg.DropThreshold = o.DropThreshold
	}
	if o.PeakWindow > 0 {
		cfg.PeakWindow = o.PeakWindow
	}
	if o.MinSustainedSec > 0 {
		cfg.MinSustainedSec = o.MinSustainedSec
	}
	if o.TopDropoffs > 0 {
		cfg.TopDropoffs = o.TopDropoffs
	}
	if o.TopPeaks > 0 {
		cfg.TopPeaks = o.TopPeaks
	}
	if o.TopSpikes > 0 {
		cfg.TopSpikes = o.TopSpikes
	}
	return cfg
}
