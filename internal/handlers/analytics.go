package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/classpulse/internal/models"
)

// SessionAnalytics handles GET /v1/sessions/:id/analytics
func (h *Handler) SessionAnalytics(c *fiber.Ctx) error {
	summary, err := h.analytics.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(summary)
}

// AdvancedAnalytics handles GET /v1/sessions/:id/advanced-analytics
func (h *Handler) AdvancedAnalytics(c *fiber.Ctx) error {
	id := c.Params("id")
	adv, err := h.analytics.Advanced(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(models.AdvancedAnalyticsResponse{SessionID: id, AdvancedAnalytics: adv})
}

// TimelineAnalytics handles GET /v1/sessions/:id/timeline-analytics
func (h *Handler) TimelineAnalytics(c *fiber.Ctx) error {
	result, err := h.analytics.Analyze(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// Report handles GET /v1/sessions/:id/report
func (h *Handler) Report(c *fiber.Ctx) error {
	report, err := h.analytics.Report(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(report)
}

// TeacherSessionSummary handles GET /v1/teachers/:id/sessions/summary
func (h *Handler) TeacherSessionSummary(c *fiber.Ctx) error {
	summary, err := h.analytics.TeacherSummary(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(summary)
}

// ReportText handles GET /v1/sessions/:id/report/text
func (h *Handler) ReportText(c *fiber.Ctx) error {
	text, err := h.analytics.ReportText(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

// ReportCSV handles GET /v1/sessions/:id/report/csv
func (h *Handler) ReportCSV(c *fiber.Ctx) error {
	id := c.Params("id")

	var buf bytes.Buffer
	if err := h.analytics.ExportCSV(c.UserContext(), id, &buf); err != nil {
		return h.respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="session-%s.csv"`, id))
	return c.Send(buf.Bytes())
}

// Analyze handles POST /v1/analytics, a stateless analysis of the posted samples
func (h *Handler) Analyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.analytics.AnalyzeSamples(req.Samples, req.Config)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}
