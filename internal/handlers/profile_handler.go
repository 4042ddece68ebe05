package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const maxAvatarSizeBytes = 5 * 1024 * 1024

type profileApplicationService interface {
	GetOwn(ctx context.Context, userID int64) (*models.Profile, error)
	Update(ctx context.Context, userID int64, input services.UpdateProfileInput) (*models.Profile, error)
	GetPublic(ctx context.Context, viewerID int64, username string) (*models.PublicProfile, error)
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Followers(ctx context.Context, userID int64) ([]models.Profile, error)
	Following(ctx context.Context, userID int64) ([]models.Profile, error)
}

type avatarStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
}

type ProfileHandler struct {
	service        profileApplicationService
	avatars        avatarStore
	storageService services.StorageService
}

func NewProfileHandler(
	service profileApplicationService,
	avatars avatarStore,
	storageService services.StorageService,
) *ProfileHandler {
	return &ProfileHandler{
		service:        service,
		avatars:        avatars,
		storageService: storageService,
	}
}

type updateProfileRequest struct {
	DisplayName    *string   `json:"display_name"`
	Bio            *string   `json:"bio"`
	FavoriteGenres *[]string `json:"favorite_genres"`
}

func (h *ProfileHandler) GetOwnProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.service.GetOwn(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := h.service.Update(c.Context(), userID, services.UpdateProfileInput{
		DisplayName:    req.DisplayName,
		Bio:            req.Bio,
		FavoriteGenres: req.FavoriteGenres,
	})
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is empty"})
	}
	if fileHeader.Size > maxAvatarSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar must be a jpg, jpeg, png, or webp file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open avatar file"})
	}
	defer file.Close()

	avatarURL, err := h.storageService.UploadAvatar(c.Context(), file, strconv.FormatInt(userID, 10))
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported image format"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload avatar"})
	}

	current, err := h.avatars.GetByUserID(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}
	if current.AvatarURL != nil && *current.AvatarURL != "" && *current.AvatarURL != avatarURL {
		_ = h.storageService.DeleteFile(c.Context(), *current.AvatarURL)
	}

	if err := h.avatars.UpdateAvatar(c.Context(), userID, avatarURL); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"avatar_url": avatarURL})
}

func (h *ProfileHandler) GetPublicProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	username := strings.ToLower(strings.TrimSpace(c.Params("username")))
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid username"})
	}

	profile, err := h.service.GetPublic(c.Context(), userID, username)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) Follow(c *fiber.Ctx) error {
	return h.setFollow(c, true)
}

func (h *ProfileHandler) Unfollow(c *fiber.Ctx) error {
	return h.setFollow(c, false)
}

func (h *ProfileHandler) setFollow(c *fiber.Ctx, follow bool) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	targetID, err := strconv.ParseInt(c.Params("userID"), 10, 64)
	if err != nil || targetID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if follow {
		err = h.service.Follow(c.Context(), userID, targetID)
	} else {
		err = h.service.Unfollow(c.Context(), userID, targetID)
	}
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfileHandler) ListFollowers(c *fiber.Ctx) error {
	return h.listFollowGraph(c, h.service.Followers, "followers")
}

func (h *ProfileHandler) ListFollowing(c *fiber.Ctx) error {
	return h.listFollowGraph(c, h.service.Following, "following")
}

func (h *ProfileHandler) listFollowGraph(
	c *fiber.Ctx,
	list func(ctx context.Context, userID int64) ([]models.Profile, error),
	key string,
) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profiles, err := list(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{key: profiles})
}

func mapProfileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process profile request"})
	}
}
