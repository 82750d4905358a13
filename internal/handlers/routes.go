package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the versioned API on r
func (h *Handler) RegisterRoutes(r fiber.Router) {
	// Session lifecycle
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions", h.ListSessions)
	r.Post("/sessions/join", h.JoinSession)
	r.Get("/sessions/:id", h.GetSession)
	r.Post("/sessions/:id/end", h.EndSession)
	r.Post("/sessions/:id/heartbeat", h.Heartbeat)

	// Samples
	r.Post("/sessions/:id/samples", h.AppendSamples)
	r.Get("/sessions/:id/samples", h.ListSamples)

	// Analytics and reports
	r.Get("/sessions/:id/analytics", h.SessionAnalytics)
	r.Get("/sessions/:id/advanced-analytics", h.AdvancedAnalytics)
	r.Get("/sessions/:id/timeline-analytics", h.TimelineAnalytics)
	r.Get("/sessions/:id/report", h.Report)
	r.Get("/sessions/:id/report/text", h.ReportText)
	r.Get("/sessions/:id/report/csv", h.ReportCSV)
	r.Post("/analytics", h.Analyze)

	// Teacher dashboard
	r.Get("/teachers/:id/sessions/summary", h.TeacherSessionSummary)
}
