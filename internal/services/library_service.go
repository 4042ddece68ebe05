package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

var ErrGameNotFound = errors.New("game not found")

var libraryStatuses = map[string]struct{}{
	"backlog":   {},
	"playing":   {},
	"completed": {},
	"dropped":   {},
}

const maxReviewLength = 4000

type gameReader interface {
	GetByID(ctx context.Context, gameID int64) (*models.Game, error)
}

type libraryStore interface {
	Upsert(ctx context.Context, input repository.UpsertLibraryEntryInput) (*models.LibraryEntry, error)
	ListForUser(ctx context.Context, userID int64, status string) ([]models.LibraryEntryDetail, error)
	Delete(ctx context.Context, userID, gameID int64) (bool, error)
}

// LibraryService manages per-user play logs: which games a user tracks,
// their play status and an optional rating and review.
type LibraryService struct {
	games   gameReader
	entries libraryStore
}

func NewLibraryService(games gameReader, entries libraryStore) *LibraryService {
	return &LibraryService{games: games, entries: entries}
}

type LogGameInput struct {
	GameID int64
	Status string
	Rating *int
	Review *string
}

func (s *LibraryService) LogGame(ctx context.Context, userID int64, input LogGameInput) (*models.LibraryEntry, error) {
	if userID <= 0 || input.GameID <= 0 {
		return nil, ErrInvalidInput
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if _, ok := libraryStatuses[status]; !ok {
		return nil, ErrInvalidInput
	}

	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 10) {
		return nil, ErrInvalidInput
	}

	var review *string
	if input.Review != nil {
		trimmed := strings.TrimSpace(*input.Review)
		if trimmed == "" {
			review = nil
		} else if len(trimmed) > maxReviewLength {
			return nil, ErrInvalidInput
		} else {
			review = &trimmed
		}
	}

	if _, err := s.games.GetByID(ctx, input.GameID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	return s.entries.Upsert(ctx, repository.UpsertLibraryEntryInput{
		UserID: userID,
		GameID: input.GameID,
		Status: status,
		Rating: input.Rating,
		Review: review,
	})
}

func (s *LibraryService) ListLibrary(ctx context.Context, userID int64, status string) ([]models.LibraryEntryDetail, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" {
		if _, ok := libraryStatuses[status]; !ok {
			return nil, ErrInvalidInput
		}
	}
	return s.entries.ListForUser(ctx, userID, status)
}

func (s *LibraryService) RemoveGame(ctx context.Context, userID, gameID int64) error {
	if userID <= 0 || gameID <= 0 {
		return ErrInvalidInput
	}
	removed, err := s.entries.Delete(ctx, userID, gameID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
