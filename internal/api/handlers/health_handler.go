package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	version string
	now     func() time.Time
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, now: time.Now}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"version":   h.version,
	})
}
