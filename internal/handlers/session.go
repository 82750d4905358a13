package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/services"
)

// CreateSession handles POST /v1/sessions
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var req models.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session, err := h.sessions.Create(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(services.ToSessionResponse(session))
}

// ListSessions handles GET /v1/sessions?teacher_id=
func (h *Handler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.sessions.List(c.UserContext(), c.Query("teacher_id"))
	if err != nil {
		return h.respondError(c, err)
	}

	resp := models.SessionListResponse{
		Sessions: make([]models.SessionResponse, 0, len(sessions)),
		Count:    len(sessions),
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, services.ToSessionResponse(s))
	}
	return c.JSON(resp)
}

// GetSession handles GET /v1/sessions/:id
func (h *Handler) GetSession(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(services.ToSessionResponse(session))
}

// EndSession handles POST /v1/sessions/:id/end
func (h *Handler) EndSession(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := logging.WithSessionID(c.UserContext(), id)

	session, err := h.sessions.End(ctx, id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(services.ToSessionResponse(session))
}

// Heartbeat handles POST /v1/sessions/:id/heartbeat
func (h *Handler) Heartbeat(c *fiber.Ctx) error {
	if err := h.sessions.Heartbeat(c.UserContext(), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// JoinSession handles POST /v1/sessions/join
func (h *Handler) JoinSession(c *fiber.Ctx) error {
	var req models.JoinSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session, err := h.sessions.Join(c.UserContext(), req.ShareCode)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(services.ToSessionResponse(session))
}
