package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/store"
)

var testStart = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the services under test
type testClock struct {
	at time.Time
}

func (c *testClock) Now() time.Time { return c.at }

func (c *testClock) Advance(d time.Duration) { c.at = c.at.Add(d) }

type testEnv struct {
	store     *store.MemoryStore
	cache     *store.MemoryReportCache
	clock     *testClock
	sessions  *SessionService
	samples   *SampleService
	analytics *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.NewNop()
	st := store.NewMemoryStore()
	cache := store.NewMemoryReportCache(time.Hour)
	m := metrics.NewMetrics()
	clock := &testClock{at: testStart}

	env := &testEnv{
		store:     st,
		cache:     cache,
		clock:     clock,
		sessions:  NewSessionService(logger, st),
		samples:   NewSampleService(logger, st, cache, m),
		analytics: NewAnalyticsService(logger, st, cache, m, engagement.DefaultConfig()),
	}
	env.sessions.now = clock.Now
	env.samples.now = clock.Now
	env.analytics.now = clock.Now
	return env
}

func (e *testEnv) createSession(t *testing.T) *store.Session {
	t.Helper()
	session, err := e.sessions.Create(context.Background(), &models.CreateSessionRequest{
		Title:     "Algebra",
		TeacherID: "teacher-1",
	})
	require.NoError(t, err)
	return session
}

// appendScores stores scores one second apart starting at testStart
func (e *testEnv) appendScores(t *testing.T, sessionID string, scores ...float64) {
	t.Helper()
	inputs := make([]models.SampleInput, len(scores))
	for i, s := range scores {
		inputs[i] = models.SampleInput{
			Timestamp: testStart.Add(time.Duration(i) * time.Second).Format("2006-01-02T15:04:05"),
			Score:     s,
		}
	}
	_, err := e.samples.Append(context.Background(), sessionID, metrics.SourceHTTP, inputs)
	require.NoError(t, err)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, ErrorCode(err), "error: %v", err)
}
