package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/middleware"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/services"
	"github.com/classpulse/classpulse/internal/store"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := logging.NewNop()
	st := store.NewMemoryStore()
	cache := store.NewMemoryReportCache(time.Hour)
	m := metrics.NewMetrics()

	h := New(logger,
		services.NewSessionService(logger, st),
		services.NewSampleService(logger, st, cache, m),
		services.NewAnalyticsService(logger, st, cache, m, engagement.DefaultConfig()),
	)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	app.Get("/health", h.Health)
	h.RegisterRoutes(app.Group("/v1"))
	app.Use(h.NotFound)
	return app
}

// doJSON sends body (if any) as JSON and returns the status and raw response body
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func createSession(t *testing.T, app *fiber.App) models.SessionResponse {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/v1/sessions", models.CreateSessionRequest{
		Title:     "Biology",
		TeacherID: "teacher-1",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	return decode[models.SessionResponse](t, body)
}
