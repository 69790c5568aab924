package handlers

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/service"
)

type PlatformHandler struct {
	ps  service.PlatformService
	cfg config.Config
}

func NewPlatformHandler(ps service.PlatformService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		cfg: cfg,
	}
}

func (h *PlatformHandler) LinkedInAuth(c *fiber.Ctx) error {
	link, err := h.ps.BeginLink(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(link)
}

// LinkedInCallback finishes the OAuth flow. With a frontend configured the
// browser is sent back to it, otherwise the result is returned as JSON.
func (h *PlatformHandler) LinkedInCallback(c *fiber.Ctx) error {
	if denied := c.Query("error"); denied != "" {
		return h.callbackFailed(c, fiber.StatusBadRequest, denied)
	}

	account, err := h.ps.CompleteLink(c.UserContext(), c.Query("code"), c.Query("state"))
	if err != nil {
		status, message := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			slog.Error(err.Error(), "path", c.Path())
		}
		return h.callbackFailed(c, status, message)
	}

	if h.cfg.FrontendURL != "" {
		redirectURL := fmt.Sprintf("%s/dashboard/accounts?linkedin=connected", h.cfg.FrontendURL)
		return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "LinkedIn account connected successfully",
		"account": account,
	})
}

func (h *PlatformHandler) callbackFailed(c *fiber.Ctx, status int, message string) error {
	if h.cfg.FrontendURL != "" {
		redirectURL := fmt.Sprintf("%s/dashboard/accounts?linkedin=error&message=%s", h.cfg.FrontendURL, url.QueryEscape(message))
		return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func (h *PlatformHandler) LinkedInDisconnect(c *fiber.Ctx) error {
	if err := h.ps.Unlink(c.UserContext(), GetUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "LinkedIn account disconnected successfully",
	})
}
