package logging

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// MiddlewareConfig tunes FiberMiddleware
type MiddlewareConfig struct {
	// SkipPaths are served without an access log line
	SkipPaths []string

	// AdditionalFields returns extra key/value pairs for each access log line
	AdditionalFields func(c *fiber.Ctx) []interface{}
}

// DefaultMiddlewareConfig skips the health and metrics endpoints
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{SkipPaths: []string{"/health", "/metrics"}}
}

// FiberMiddleware assigns or propagates X-Request-ID, stores the request ID and logger in
// the user context and writes one access log line per request. 5xx and handler errors log
// at error, 4xx at warn, everything else at info.
func FiberMiddleware(logger *Logger, cfg MiddlewareConfig) fiber.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		start := time.Now()
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.SetUserContext(WithLogger(WithRequestID(c.UserContext(), id), logger))

		err := c.Next()

		status := c.Response().StatusCode()
		kv := []interface{}{
			"request_id", id,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"ip", c.IP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if cfg.AdditionalFields != nil {
			kv = append(kv, cfg.AdditionalFields(c)...)
		}

		switch {
		case err != nil:
			logger.Error("Request failed", append(kv, "error", err)...)
		case status >= fiber.StatusInternalServerError:
			logger.Error("Server error", kv...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("Client error", kv...)
		default:
			logger.Info("Request completed", kv...)
		}
		return err
	}
}
