package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type postApplicationService interface {
	Create(ctx context.Context, userID int64, gameID *int64, body string) (*models.Post, error)
	Delete(ctx context.Context, userID, postID int64) error
	Feed(ctx context.Context, userID int64, page, limit int) ([]models.FeedPost, int, error)
}

type PostHandler struct {
	service postApplicationService
}

func NewPostHandler(service postApplicationService) *PostHandler {
	return &PostHandler{service: service}
}

type createPostRequest struct {
	Body   string `json:"body"`
	GameID *int64 `json:"game_id"`
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	post, err := h.service.Create(c.Context(), userID, req.GameID, req.Body)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	postID, err := strconv.ParseInt(c.Params("postID"), 10, 64)
	if err != nil || postID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	if err := h.service.Delete(c.Context(), userID, postID); err != nil {
		return mapPostError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PostHandler) GetFeed(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := parsePage(c)

	posts, total, err := h.service.Feed(c.Context(), userID, page, limit)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":      posts,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func mapPostError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrGameNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process post request"})
	}
}
