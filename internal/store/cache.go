package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/compression"
)

// ReportCache holds computed reports of ended sessions. Entries are snappy-compressed JSON.
type ReportCache interface {
	Get(ctx context.Context, sessionID string) (*engagement.AnalyticsResult, bool)
	Put(ctx context.Context, sessionID string, result *engagement.AnalyticsResult) error
	Invalidate(ctx context.Context, sessionID string) error
}

func newReportCodec() *compression.Codec {
	codec, err := compression.NewCodec(compression.Snappy)
	if err != nil {
		panic(err) // snappy is always registered
	}
	return codec
}

// NopReportCache never stores anything
type NopReportCache struct{}

func (NopReportCache) Get(context.Context, string) (*engagement.AnalyticsResult, bool) {
	return nil, false
}

func (NopReportCache) Put(context.Context, string, *engagement.AnalyticsResult) error {
	return nil
}

func (NopReportCache) Invalidate(context.Context, string) error {
	return nil
}

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// MemoryReportCache is a TTL map of encoded reports
type MemoryReportCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	codec   *compression.Codec
	now     func() time.Time
}

// NewMemoryReportCache creates an in-memory cache; entries expire after ttl
func NewMemoryReportCache(ttl time.Duration) *MemoryReportCache {
	return &MemoryReportCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		codec:   newReportCodec(),
		now:     time.Now,
	}
}

func (m *MemoryReportCache) Get(_ context.Context, sessionID string) (*engagement.AnalyticsResult, bool) {
	m.mu.Lock()
	entry, ok := m.entries[sessionID]
	if ok && !m.now().Before(entry.expires) {
		delete(m.entries, sessionID)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	var result engagement.AnalyticsResult
	if err := m.codec.Unmarshal(entry.data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (m *MemoryReportCache) Put(_ context.Context, sessionID string, result *engagement.AnalyticsResult) error {
	data, err := m.codec.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	m.mu.Lock()
	m.entries[sessionID] = cacheEntry{data: data, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryReportCache) Invalidate(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.entries, sessionID)
	m.mu.Unlock()
	return nil
}

// RedisReportCache stores encoded reports under <prefix>:report:<id> with SET ... EX ttl
type RedisReportCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	codec  *compression.Codec
}

// NewRedisReportCache creates a cache sharing client with the store
func NewRedisReportCache(client *redis.Client, prefix string, ttl time.Duration) *RedisReportCache {
	if prefix == "" {
		prefix = "classpulse"
	}
	return &RedisReportCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		codec:  newReportCodec(),
	}
}

func (r *RedisReportCache) key(sessionID string) string {
	return r.prefix + ":report:" + sessionID
}

func (r *RedisReportCache) Get(ctx context.Context, sessionID string) (*engagement.AnalyticsResult, bool) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		return nil, false
	}

	var result engagement.AnalyticsResult
	if err := r.codec.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (r *RedisReportCache) Put(ctx context.Context, sessionID string, result *engagement.AnalyticsResult) error {
	data, err := r.codec.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

func (r *RedisReportCache) Invalidate(ctx context.Context, sessionID string) error {
	err := r.client.Del(ctx, r.key(sessionID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to invalidate report: %w", err)
	}
	return nil
}
