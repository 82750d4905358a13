// Package store persists classroom sessions and their engagement samples.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/analytics/engagement"
)

var (
	// ErrSessionNotFound is returned when no session matches the given ID or share code
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session whose ID or share code is taken
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionEnded is returned when appending samples to an ended session
	ErrSessionEnded = errors.New("session has ended")
)

// Session is one live classroom session
type Session struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Subject    string     `json:"subject,omitempty"`
	TeacherID  string     `json:"teacher_id"`
	ShareCode  string     `json:"share_code"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	LastSeenAt time.Time  `json:"last_seen_at"`
}

// Active reports whether the session has not been ended
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	c := *s
	if s.EndedAt != nil {
		ended := *s.EndedAt
		c.EndedAt = &ended
	}
	return &c
}

// Store is the session/sample persistence contract.
type Store interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	FindByShareCode(ctx context.Context, code string) (*Session, error)
	// ListSessions returns the teacher's sessions, most recently started first
	ListSessions(ctx context.Context, teacherID string) ([]*Session, error)
	EndSession(ctx context.Context, id string, at time.Time) error
	Heartbeat(ctx context.Context, id string, at time.Time) error

	// AppendSamples stores samples for a session. Every timestamp must parse. The ended
	// check and the write are atomic: once EndSession returns, appends fail with
	// ErrSessionEnded.
	AppendSamples(ctx context.Context, sessionID string, samples []analytics.Sample) error
	// ListSamples returns the session's samples in ascending timestamp order,
	// restricted to samples strictly after since when since is non-nil.
	ListSamples(ctx context.Context, sessionID string, since *time.Time) ([]analytics.Sample, error)

	Close() error
}

// timedSample is a sample with its parsed timestamp
type timedSample struct {
	at     time.Time
	sample analytics.Sample
}

// stampSamples parses every sample's timestamp
func stampSamples(samples []analytics.Sample) ([]timedSample, error) {
	out := make([]timedSample, len(samples))
	for i, s := range samples {
		at, err := engagement.ParseTimestamp(s.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = timedSample{at: at, sample: s}
	}
	return out, nil
}

func sortSessionsByStart(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
}
