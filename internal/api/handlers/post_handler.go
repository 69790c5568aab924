package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{s: s}
}

func (h *PostHandler) Generate(c *fiber.Ctx) error {
	var req transfer.PostGeneration
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	post, err := h.s.Generate(c.UserContext(), GetUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) GenerateHashtags(c *fiber.Ctx) error {
	var req transfer.HashtagGeneration
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	hashtags, err := h.s.GenerateHashtags(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"hashtags": hashtags,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	query := transfer.ListQuery{
		Page:   c.QueryInt("page", 0),
		Limit:  c.QueryInt("limit", 0),
		Status: c.Query("status"),
	}

	list, err := h.s.List(c.UserContext(), GetUserID(c), query)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(list)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.s.Get(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	var req transfer.PostUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	post, err := h.s.Update(c.UserContext(), GetUserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	if err := h.s.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

// PublishPost answers a platform rejection with 502 and the post as stored
// after the failure.
func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	post, err := h.s.Publish(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrPublishFailed) && post != nil {
			slog.Info(err.Error(), "post_id", post.ID)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": service.ErrPublishFailed.Error(),
				"post":  post,
			})
		}
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	var req transfer.PostSchedule
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	post, err := h.s.Schedule(c.UserContext(), GetUserID(c), req.PostID, req.ScheduledAt)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) Analytics(c *fiber.Ctx) error {
	analytics, err := h.s.RefreshAnalytics(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(analytics)
}

func (h *PostHandler) Attempts(c *fiber.Ctx) error {
	attempts, err := h.s.Attempts(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(attempts)
}
