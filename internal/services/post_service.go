package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

const maxPostLength = 1000

type postStore interface {
	Create(ctx context.Context, userID int64, gameID *int64, body string) (*models.Post, error)
	Delete(ctx context.Context, postID, userID int64) (bool, error)
	Feed(ctx context.Context, userID int64, limit, offset int) ([]models.FeedPost, int, error)
}

// PostService handles the social feed: short text updates, optionally
// tied to a catalog game.
type PostService struct {
	posts postStore
	games gameReader
}

func NewPostService(posts postStore, games gameReader) *PostService {
	return &PostService{posts: posts, games: games}
}

func (s *PostService) Create(ctx context.Context, userID int64, gameID *int64, body string) (*models.Post, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxPostLength {
		return nil, ErrInvalidInput
	}

	if gameID != nil {
		if *gameID <= 0 {
			return nil, ErrInvalidInput
		}
		if _, err := s.games.GetByID(ctx, *gameID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrGameNotFound
			}
			return nil, err
		}
	}

	return s.posts.Create(ctx, userID, gameID, body)
}

func (s *PostService) Delete(ctx context.Context, userID, postID int64) error {
	if userID <= 0 || postID <= 0 {
		return ErrInvalidInput
	}
	deleted, err := s.posts.Delete(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *PostService) Feed(ctx context.Context, userID int64, page, limit int) ([]models.FeedPost, int, error) {
	if userID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.posts.Feed(ctx, userID, limit, (page-1)*limit)
}
