package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/internal/utils"
)

// SampleTimestampLayout is used to stamp samples that arrive without a timestamp
const SampleTimestampLayout = "2006-01-02T15:04:05.000000"

// SampleService handles engagement sample ingestion and retrieval
type SampleService struct {
	logger  *logging.Logger
	store   store.Store
	cache   store.ReportCache
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSampleService creates a new SampleService
func NewSampleService(logger *logging.Logger, st store.Store, cache store.ReportCache, m *metrics.Metrics) *SampleService {
	if cache == nil {
		cache = store.NopReportCache{}
	}
	return &SampleService{
		logger:  logger,
		store:   st,
		cache:   cache,
		metrics: m,
		now:     time.Now,
	}
}

// Append validates and stores samples for an active session. The batch is rejected
// as a whole if any sample is invalid. Returns the number of stored samples.
func (s *SampleService) Append(ctx context.Context, sessionID, source string, inputs []models.SampleInput) (int, error) {
	if len(inputs) == 0 {
		return 0, NewServiceError(CodeInvalidRequest, "no samples provided")
	}
	if len(inputs) > utils.MaxSamplesPerBatch {
		s.metrics.AddRejected(source, "batch_too_large", len(inputs))
		return 0, NewServiceErrorWithDetails(CodeInvalidRequest, "too many samples in one batch",
			map[string]interface{}{"max": utils.MaxSamplesPerBatch, "got": len(inputs)})
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return 0, fromStoreError(err, sessionID)
	}
	if !session.Active() {
		s.metrics.AddRejected(source, "session_ended", len(inputs))
		return 0, NewServiceErrorWithDetails(CodeSessionEnded, "session has ended",
			map[string]interface{}{"session_id": sessionID})
	}

	samples, err := s.normalize(inputs)
	if err != nil {
		s.metrics.AddRejected(source, "invalid_sample", len(inputs))
		return 0, err
	}

	if err := s.store.AppendSamples(ctx, sessionID, samples); err != nil {
		// the session can end between the check above and the write
		if errors.Is(err, store.ErrSessionEnded) {
			s.metrics.AddRejected(source, "session_ended", len(inputs))
		}
		return 0, fromStoreError(err, sessionID)
	}

	if err := s.cache.Invalidate(ctx, sessionID); err != nil {
		logging.FromContext(ctx).Warn("Failed to invalidate report cache",
			"session_id", sessionID,
			"error", err)
	}

	s.metrics.AddIngested(source, len(samples))
	logging.FromContext(ctx).Debug("Samples appended",
		"session_id", sessionID,
		"source", source,
		"count", len(samples))
	return len(samples), nil
}

// normalize converts client input into samples, stamping missing timestamps
func (s *SampleService) normalize(inputs []models.SampleInput) ([]analytics.Sample, error) {
	now := s.now().UTC().Format(SampleTimestampLayout)

	samples := make([]analytics.Sample, len(inputs))
	for i, in := range inputs {
		score, ok := utils.ParseScore(in.Score)
		if !ok {
			return nil, NewServiceErrorWithDetails(CodeInvalidSample,
				fmt.Sprintf("score must be a number between %g and %g", utils.MinScore, utils.MaxScore),
				map[string]interface{}{"index": i, "score": in.Score})
		}

		ts := strings.TrimSpace(in.Timestamp)
		if ts == "" {
			ts = now
		} else if _, err := engagement.ParseTimestamp(ts); err != nil {
			return nil, NewServiceErrorWithDetails(CodeInvalidSample, err.Error(),
				map[string]interface{}{"index": i, "timestamp": in.Timestamp})
		}

		samples[i] = analytics.Sample{Timestamp: ts, Score: score}
	}
	return samples, nil
}

// List returns a session's samples in chronological order, strictly after since when given
func (s *SampleService) List(ctx context.Context, sessionID string, since *time.Time) ([]analytics.Sample, error) {
	samples, err := s.store.ListSamples(ctx, sessionID, since)
	if err != nil {
		return nil, fromStoreError(err, sessionID)
	}
	return samples, nil
}
