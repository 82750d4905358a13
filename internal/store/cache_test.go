package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/config"
)

func sampleReport() *engagement.AnalyticsResult {
	samples := make([]analytics.Sample, 0, 90)
	for i := 0; i < 90; i++ {
		score := 0.9
		if i >= 70 {
			score = 0.2
		}
		samples = append(samples, analytics.Sample{
			Timestamp: t0.Add(time.Duration(i) * time.Second).Format(time.RFC3339),
			Score:     score,
		})
	}
	return engagement.NewEngine(engagement.DefaultConfig(), engagement.WithClock(func() time.Time { return t0 })).Analyze(samples)
}

func TestMemoryReportCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryReportCache(time.Minute)

	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)

	report := sampleReport()
	require.NoError(t, cache.Put(ctx, "a", report))

	got, ok := cache.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, report.Summary, got.Summary)
	assert.Equal(t, report.CriticalMoments, got.CriticalMoments)
	assert.Equal(t, report.SustainedEngagement, got.SustainedEngagement)
	assert.Equal(t, report.Timeline, got.Timeline)
	assert.True(t, report.ComputedAt.Equal(got.ComputedAt))
}

func TestMemoryReportCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryReportCache(time.Minute)
	now := t0
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Put(ctx, "a", sampleReport()))

	now = now.Add(59 * time.Second)
	_, ok := cache.Get(ctx, "a")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = cache.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryReportCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryReportCache(time.Minute)

	require.NoError(t, cache.Put(ctx, "a", sampleReport()))
	require.NoError(t, cache.Invalidate(ctx, "a"))

	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)
}

func TestNopReportCache(t *testing.T) {
	ctx := context.Background()
	var cache ReportCache = NopReportCache{}

	require.NoError(t, cache.Put(ctx, "a", sampleReport()))
	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig().Store

	s, cache, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.IsType(t, &MemoryStore{}, s)
	assert.IsType(t, &MemoryReportCache{}, cache)

	cfg.ReportCacheTTL = 0
	_, cache, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, NopReportCache{}, cache)

	cfg.Type = "cassandra"
	_, _, err = New(cfg)
	assert.Error(t, err)
}
