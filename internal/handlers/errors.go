package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
	"alfredoptarigan/cv-match-analyzer/internal/services"
)

// statusFor maps orchestrator and extractor errors to HTTP status codes.
func statusFor(err error) int {
	var validationErr *services.ValidationError
	var unsupportedErr *services.UnsupportedTypeError
	var readErr *services.ReadError
	var providerErr *services.ProviderError

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrSessionBusy), errors.Is(err, services.ErrNotAnalyzing):
		return fiber.StatusConflict
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &unsupportedErr):
		return fiber.StatusUnsupportedMediaType
	case errors.As(err, &readErr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &providerErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// userMessage never exposes provider internals; the session carries the user-facing text.
func userMessage(err error, session *models.Session) string {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, services.ErrSessionBusy):
		return "Another upload or analysis is already in progress for this session"
	case errors.Is(err, services.ErrNotAnalyzing):
		return "No analysis is in progress for this session"
	}
	if session != nil && session.Error != "" {
		return session.Error
	}
	var providerErr *services.ProviderError
	if errors.As(err, &providerErr) {
		return services.MessageNetwork
	}
	return err.Error()
}

func respondError(c *fiber.Ctx, err error, session *models.Session) error {
	code := statusFor(err)
	body := fiber.Map{
		"error": userMessage(err, session),
		"code":  code,
	}
	if session != nil {
		body["session"] = models.NewSessionResponse(session)
	}
	return c.Status(code).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"code":  fiber.StatusBadRequest,
	})
}

func parseUUIDParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
