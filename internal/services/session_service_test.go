package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/models"
)

func TestSessionService_Create(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "Algebra", session.Title)
	assert.Equal(t, "teacher-1", session.TeacherID)
	assert.Equal(t, testStart, session.StartedAt)
	assert.True(t, session.Active())

	require.Len(t, session.ShareCode, 8)
	for _, c := range session.ShareCode {
		assert.True(t, strings.ContainsRune(shareCodeAlphabet, c), "unexpected %q in share code", c)
	}
}

func TestSessionService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sessions.Create(context.Background(), &models.CreateSessionRequest{Title: "  ", TeacherID: "t"})
	requireCode(t, err, CodeInvalidRequest)

	_, err = env.sessions.Create(context.Background(), &models.CreateSessionRequest{Title: "x"})
	requireCode(t, err, CodeInvalidRequest)
}

func TestSessionService_GetNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sessions.Get(context.Background(), "missing")
	requireCode(t, err, CodeSessionNotFound)
}

func TestSessionService_List(t *testing.T) {
	env := newTestEnv(t)
	first := env.createSession(t)
	env.clock.Advance(time.Hour)
	second := env.createSession(t)

	sessions, err := env.sessions.List(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)

	_, err = env.sessions.List(context.Background(), "")
	requireCode(t, err, CodeInvalidRequest)

	none, err := env.sessions.List(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionService_End(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	env.clock.Advance(90 * time.Second)
	ended, err := env.sessions.End(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, testStart.Add(90*time.Second), *ended.EndedAt)

	_, err = env.sessions.End(context.Background(), session.ID)
	requireCode(t, err, CodeSessionEnded)

	_, err = env.sessions.End(context.Background(), "missing")
	requireCode(t, err, CodeSessionNotFound)
}

func TestSessionService_Heartbeat(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	env.clock.Advance(time.Minute)
	require.NoError(t, env.sessions.Heartbeat(context.Background(), session.ID))

	got, err := env.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(time.Minute), got.LastSeenAt)

	_, err = env.sessions.End(context.Background(), session.ID)
	require.NoError(t, err)
	requireCode(t, env.sessions.Heartbeat(context.Background(), session.ID), CodeSessionEnded)
}

func TestSessionService_Join(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	joined, err := env.sessions.Join(context.Background(), " "+strings.ToLower(session.ShareCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, session.ID, joined.ID)

	_, err = env.sessions.Join(context.Background(), "ZZZZZZZZ")
	requireCode(t, err, CodeSessionNotFound)

	_, err = env.sessions.Join(context.Background(), "")
	requireCode(t, err, CodeInvalidRequest)

	_, err = env.sessions.End(context.Background(), session.ID)
	require.NoError(t, err)
	_, err = env.sessions.Join(context.Background(), session.ShareCode)
	requireCode(t, err, CodeSessionEnded)
}

func TestToSessionResponse(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	resp := ToSessionResponse(session)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "2024-01-01T10:00:00Z", resp.StartedAt)
	assert.Nil(t, resp.EndedAt)

	env.clock.Advance(time.Minute)
	ended, err := env.sessions.End(context.Background(), session.ID)
	require.NoError(t, err)

	resp = ToSessionResponse(ended)
	assert.Equal(t, "ended", resp.Status)
	require.NotNil(t, resp.EndedAt)
	assert.Equal(t, "2024-01-01T10:01:00Z", *resp.EndedAt)
}
