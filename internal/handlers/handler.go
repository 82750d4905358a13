package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger    *logging.Logger
	sessions  *services.SessionService
	samples   *services.SampleService
	analytics *services.AnalyticsService
}

// New creates a new handler instance
func New(
	logger *logging.Logger,
	sessions *services.SessionService,
	samples *services.SampleService,
	analytics *services.AnalyticsService,
) *Handler {
	return &Handler{
		logger:    logger,
		sessions:  sessions,
		samples:   samples,
		analytics: analytics,
	}
}

// statusFor maps service error codes onto HTTP statuses
func statusFor(code string) int {
	switch code {
	case services.CodeSessionNotFound:
		return fiber.StatusNotFound
	case services.CodeSessionEnded, services.CodeSessionActive:
		return fiber.StatusConflict
	case services.CodeInvalidSample, services.CodeInvalidRequest:
		return fiber.StatusBadRequest
	case services.CodeStoreError:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		logging.FromContext(c.UserContext()).Error("Unexpected handler error",
			"path", c.Path(),
			"error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
				Path:    c.Path(),
			},
		})
	}

	status := statusFor(svcErr.Code)
	if status >= fiber.StatusInternalServerError {
		logging.FromContext(c.UserContext()).Error("Service error",
			"path", c.Path(),
			"code", svcErr.Code,
			"error", svcErr)
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

// badRequest writes an INVALID_REQUEST error
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInvalidRequest,
			Message: message,
			Path:    c.Path(),
		},
	})
}
