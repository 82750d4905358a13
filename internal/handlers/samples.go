package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/downsampling"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/models"
)

// AppendSamples handles POST /v1/sessions/:id/samples.
// The body is a single sample or {"samples": [...]}.
func (h *Handler) AppendSamples(c *fiber.Ctx) error {
	id := c.Params("id")

	var req models.AppendSamplesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx := logging.WithSessionID(c.UserContext(), id)
	n, err := h.samples.Append(ctx, id, metrics.SourceHTTP, req.Items())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.AppendSamplesResponse{
		SessionID: id,
		Accepted:  n,
	})
}

// ListSamples handles GET /v1/sessions/:id/samples?since=&max_points=&mode=
// The cursor always points at the newest stored sample, even when the series is thinned.
func (h *Handler) ListSamples(c *fiber.Ctx) error {
	id := c.Params("id")

	maxPoints := c.QueryInt("max_points", 0)
	mode := c.Query("mode", string(downsampling.ModeAuto))
	if !downsampling.IsValid(mode) {
		return badRequest(c, "Invalid mode: "+mode)
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := engagement.ParseTimestamp(raw)
		if err != nil {
			return badRequest(c, "Invalid since timestamp: "+err.Error())
		}
		since = &t
	}

	samples, err := h.samples.List(c.UserContext(), id, since)
	if err != nil {
		return h.respondError(c, err)
	}

	resp := models.SamplesResponse{SessionID: id}
	if len(samples) > 0 {
		resp.Cursor = samples[len(samples)-1].Timestamp
	} else {
		resp.Cursor = c.Query("since")
	}

	thinned, err := downsampling.Thin(samples, downsampling.Mode(mode), maxPoints)
	if err != nil {
		return badRequest(c, err.Error())
	}
	resp.Samples = thinned
	resp.Count = len(thinned)
	return c.JSON(resp)
}
