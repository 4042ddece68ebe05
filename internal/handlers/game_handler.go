package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type gameCatalog interface {
	List(ctx context.Context, search, genre string, limit, offset int) ([]models.Game, int, error)
	GetByID(ctx context.Context, gameID int64) (*models.Game, error)
	GetBySlug(ctx context.Context, slug string) (*models.Game, error)
}

type libraryApplicationService interface {
	LogGame(ctx context.Context, userID int64, input services.LogGameInput) (*models.LibraryEntry, error)
	ListLibrary(ctx context.Context, userID int64, status string) ([]models.LibraryEntryDetail, error)
	RemoveGame(ctx context.Context, userID, gameID int64) error
}

type GameHandler struct {
	catalog gameCatalog
	library libraryApplicationService
}

func NewGameHandler(catalog gameCatalog, library libraryApplicationService) *GameHandler {
	return &GameHandler{catalog: catalog, library: library}
}

type logGameRequest struct {
	GameID int64   `json:"game_id"`
	Status string  `json:"status"`
	Rating *int    `json:"rating"`
	Review *string `json:"review"`
}

func (h *GameHandler) ListGames(c *fiber.Ctx) error {
	page, limit := parsePage(c)
	search := strings.TrimSpace(c.Query("search"))
	genre := strings.TrimSpace(c.Query("genre"))

	games, total, err := h.catalog.List(c.Context(), search, genre, limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list games"})
	}

	return c.JSON(fiber.Map{
		"games":      games,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

// GetGame resolves by numeric id first, then falls back to slug so
// both /games/42 and /games/hollow-knight work.
func (h *GameHandler) GetGame(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("idOrSlug"))
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid game id"})
	}

	var game *models.Game
	var err error
	if gameID, parseErr := strconv.ParseInt(key, 10, 64); parseErr == nil && gameID > 0 {
		game, err = h.catalog.GetByID(c.Context(), gameID)
	} else {
		game, err = h.catalog.GetBySlug(c.Context(), key)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch game"})
	}

	return c.JSON(fiber.Map{"game": game})
}

func (h *GameHandler) LogGame(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req logGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	entry, err := h.library.LogGame(c.Context(), userID, services.LogGameInput{
		GameID: req.GameID,
		Status: req.Status,
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		return mapLibraryError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry})
}

func (h *GameHandler) ListLibrary(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	entries, err := h.library.ListLibrary(c.Context(), userID, strings.TrimSpace(c.Query("status")))
	if err != nil {
		return mapLibraryError(c, err)
	}

	return c.JSON(fiber.Map{"library": entries})
}

func (h *GameHandler) RemoveFromLibrary(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	gameID, err := strconv.ParseInt(c.Params("gameID"), 10, 64)
	if err != nil || gameID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid game id"})
	}

	if err := h.library.RemoveGame(c.Context(), userID, gameID); err != nil {
		return mapLibraryError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func mapLibraryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrGameNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Library entry not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process library request"})
	}
}
