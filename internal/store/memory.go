package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/classpulse/classpulse/internal/analytics"
)

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	shareCodes map[string]string
	samples    map[string][]timedSample
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]*Session),
		shareCodes: make(map[string]string),
		samples:    make(map[string][]timedSample),
	}
}

func (m *MemoryStore) CreateSession(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return ErrSessionExists
	}
	if _, taken := m.shareCodes[session.ShareCode]; taken && session.ShareCode != "" {
		return ErrSessionExists
	}

	m.sessions[session.ID] = session.Clone()
	if session.ShareCode != "" {
		m.shareCodes[session.ShareCode] = session.ID
	}
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) FindByShareCode(ctx context.Context, code string) (*Session, error) {
	m.mu.RLock()
	id, ok := m.shareCodes[code]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return m.GetSession(ctx, id)
}

func (m *MemoryStore) ListSessions(_ context.Context, teacherID string) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0)
	for _, s := range m.sessions {
		if s.TeacherID == teacherID {
			sessions = append(sessions, s.Clone())
		}
	}
	sortSessionsByStart(sessions)
	return sessions, nil
}

func (m *MemoryStore) EndSession(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	ended := at
	s.EndedAt = &ended
	return nil
}

func (m *MemoryStore) Heartbeat(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.LastSeenAt = at
	return nil
}

func (m *MemoryStore) AppendSamples(_ context.Context, sessionID string, samples []analytics.Sample) error {
	stamped, err := stampSamples(samples)
	if err != nil {
		return err
	}
	sort.SliceStable(stamped, func(i, j int) bool {
		return stamped[i].at.Before(stamped[j].at)
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if !s.Active() {
		return ErrSessionEnded
	}

	m.samples[sessionID] = mergeSamples(m.samples[sessionID], stamped)
	return nil
}

// mergeSamples merges two time-sorted slices. On equal timestamps existing samples come
// first. A batch that starts at or after the last stored sample is appended in place.
func mergeSamples(existing, incoming []timedSample) []timedSample {
	if len(incoming) == 0 {
		return existing
	}
	if len(existing) == 0 || !incoming[0].at.Before(existing[len(existing)-1].at) {
		return append(existing, incoming...)
	}

	out := make([]timedSample, 0, len(existing)+len(incoming))
	i, j := 0, 0
	for i < len(existing) && j < len(incoming) {
		if incoming[j].at.Before(existing[i].at) {
			out = append(out, incoming[j])
			j++
		} else {
			out = append(out, existing[i])
			i++
		}
	}
	out = append(out, existing[i:]...)
	return append(out, incoming[j:]...)
}

func (m *MemoryStore) ListSamples(_ context.Context, sessionID string, since *time.Time) ([]analytics.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}

	stored := m.samples[sessionID]
	start := 0
	if since != nil {
		start = sort.Search(len(stored), func(i int) bool {
			return stored[i].at.After(*since)
		})
	}

	out := make([]analytics.Sample, 0, len(stored)-start)
	for _, ts := range stored[start:] {
		out = append(out, ts.sample)
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
