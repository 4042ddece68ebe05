package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type notificationApplicationService interface {
	List(ctx context.Context, userID int64, page, limit int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type NotificationHandler struct {
	service notificationApplicationService
}

func NewNotificationHandler(service notificationApplicationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := parsePage(c)

	notifications, total, err := h.service.List(c.Context(), userID, page, limit)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"pagination":    buildPaginationMeta(page, limit, total),
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	notificationID, err := strconv.ParseInt(c.Params("notificationID"), 10, 64)
	if err != nil || notificationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	if err := h.service.MarkRead(c.Context(), userID, notificationID); err != nil {
		return mapNotificationError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	count, err := h.service.UnreadCount(c.Context(), userID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{"unread": count})
}

func mapNotificationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process notification request"})
	}
}
