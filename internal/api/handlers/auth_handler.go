package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type AuthHandler struct {
	s service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req transfer.Register
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	resp, err := h.s.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req transfer.Login
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	resp, err := h.s.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.s.Profile(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}
