package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/service"
)

func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// statusFor maps a service error to its HTTP status and the message shown to
// the client. Upstream detail stays in the logs.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrNotLinked):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrApiKeyNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrApiKeyLimit):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrPublishFailed):
		return fiber.StatusBadGateway, service.ErrPublishFailed.Error()
	case errors.Is(err, service.ErrAuthFailed):
		return fiber.StatusBadGateway, service.ErrAuthFailed.Error()
	case errors.Is(err, service.ErrProfileFetch):
		return fiber.StatusBadGateway, service.ErrProfileFetch.Error()
	case errors.Is(err, service.ErrUpstream):
		return fiber.StatusBadGateway, service.ErrUpstream.Error()
	default:
		return fiber.StatusInternalServerError, "something went wrong"
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error(err.Error(), "path", c.Path())
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	slog.Info(err.Error())
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}
