package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/internal/utils"
)

// shareCodeAlphabet omits characters that are easy to misread aloud (0/O, 1/I)
const shareCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// SessionService handles classroom session lifecycle
type SessionService struct {
	logger *logging.Logger
	store  store.Store
	now    func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(logger *logging.Logger, st store.Store) *SessionService {
	return &SessionService{
		logger: logger,
		store:  st,
		now:    time.Now,
	}
}

// newShareCode derives a share code from a random UUID
func newShareCode() string {
	id := uuid.New()
	code := make([]byte, utils.ShareCodeLength)
	for i := range code {
		code[i] = shareCodeAlphabet[int(id[i])%len(shareCodeAlphabet)]
	}
	return string(code)
}

// Create starts a new session
func (s *SessionService) Create(ctx context.Context, req *models.CreateSessionRequest) (*store.Session, error) {
	title := strings.TrimSpace(req.Title)
	teacherID := strings.TrimSpace(req.TeacherID)
	if title == "" || teacherID == "" {
		return nil, NewServiceError(CodeInvalidRequest, "title and teacher_id are required")
	}

	now := s.now().UTC()
	var lastErr error
	for attempt := 0; attempt < utils.DefaultMaxRetries; attempt++ {
		session := &store.Session{
			ID:         uuid.NewString(),
			Title:      title,
			Subject:    strings.TrimSpace(req.Subject),
			TeacherID:  teacherID,
			ShareCode:  newShareCode(),
			StartedAt:  now,
			LastSeenAt: now,
		}

		err := s.store.CreateSession(ctx, session)
		if err == nil {
			logging.FromContext(ctx).Info("Session created",
				"session_id", session.ID,
				"teacher_id", teacherID)
			return session, nil
		}
		if !errors.Is(err, store.ErrSessionExists) {
			return nil, fromStoreError(err, session.ID)
		}
		lastErr = err
	}

	return nil, NewServiceError(CodeStoreError, lastErr.Error())
}

// Get returns a session by ID
func (s *SessionService) Get(ctx context.Context, id string) (*store.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, fromStoreError(err, id)
	}
	return session, nil
}

// List returns a teacher's sessions, newest first
func (s *SessionService) List(ctx context.Context, teacherID string) ([]*store.Session, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return nil, NewServiceError(CodeInvalidRequest, "teacher_id is required")
	}

	sessions, err := s.store.ListSessions(ctx, teacherID)
	if err != nil {
		return nil, NewServiceError(CodeStoreError, err.Error())
	}
	return sessions, nil
}

// End closes a session. Ending an already ended session is an error.
func (s *SessionService) End(ctx context.Context, id string) (*store.Session, error) {
	session, err := s.activeSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.EndSession(ctx, id, s.now().UTC()); err != nil {
		return nil, fromStoreError(err, id)
	}

	ended, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, fromStoreError(err, id)
	}

	logging.FromContext(ctx).Info("Session ended",
		"session_id", id,
		"duration_s", int(ended.EndedAt.Sub(session.StartedAt).Seconds()))
	return ended, nil
}

// Heartbeat records that the session's teacher is still connected
func (s *SessionService) Heartbeat(ctx context.Context, id string) error {
	if _, err := s.activeSession(ctx, id); err != nil {
		return err
	}
	if err := s.store.Heartbeat(ctx, id, s.now().UTC()); err != nil {
		return fromStoreError(err, id)
	}
	return nil
}

// Join resolves a share code to its active session
func (s *SessionService) Join(ctx context.Context, shareCode string) (*store.Session, error) {
	code := strings.ToUpper(strings.TrimSpace(shareCode))
	if code == "" {
		return nil, NewServiceError(CodeInvalidRequest, "share_code is required")
	}

	session, err := s.store.FindByShareCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, NewServiceErrorWithDetails(CodeSessionNotFound, "no session for share code",
				map[string]interface{}{"share_code": code})
		}
		return nil, NewServiceError(CodeStoreError, err.Error())
	}
	if !session.Active() {
		return nil, NewServiceErrorWithDetails(CodeSessionEnded, "session has ended",
			map[string]interface{}{"session_id": session.ID})
	}
	return session, nil
}

func (s *SessionService) activeSession(ctx context.Context, id string) (*store.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, fromStoreError(err, id)
	}
	if !session.Active() {
		return nil, NewServiceErrorWithDetails(CodeSessionEnded, "session has ended",
			map[string]interface{}{"session_id": id})
	}
	return session, nil
}

// ToSessionResponse converts a stored session to its API shape
func ToSessionResponse(session *store.Session) models.SessionResponse {
	resp := models.SessionResponse{
		ID:         session.ID,
		Title:      session.Title,
		Subject:    session.Subject,
		TeacherID:  session.TeacherID,
		ShareCode:  session.ShareCode,
		Status:     "active",
		StartedAt:  models.FormatTime(session.StartedAt),
		LastSeenAt: models.FormatTime(session.LastSeenAt),
	}
	if session.EndedAt != nil {
		ended := models.FormatTime(*session.EndedAt)
		resp.EndedAt = &ended
		resp.Status = "ended"
	}
	return resp
}
