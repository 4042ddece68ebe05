package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type GameRepository struct {
	db DBTX
}

func NewGameRepository(db DBTX) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = "id, slug, title, cover_url, genres, release_year, description, created_at"

// List returns a page of the catalog, optionally filtered by a title
// search term or genre.
func (r *GameRepository) List(ctx context.Context, search, genre string, limit, offset int) ([]models.Game, int, error) {
	filter := `
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR $2 = ANY(genres))
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM games `+filter, search, genre).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games `+filter+`
		ORDER BY title ASC, id ASC
		LIMIT $3 OFFSET $4
	`, search, genre, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var game models.Game
		if err := rows.Scan(
			&game.ID,
			&game.Slug,
			&game.Title,
			&game.CoverURL,
			&game.Genres,
			&game.ReleaseYear,
			&game.Description,
			&game.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (*models.Game, error) {
	return r.scanOne(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, gameID)
}

func (r *GameRepository) GetBySlug(ctx context.Context, slug string) (*models.Game, error) {
	return r.scanOne(ctx, `SELECT `+gameColumns+` FROM games WHERE slug = $1`, slug)
}

func (r *GameRepository) scanOne(ctx context.Context, query string, arg any) (*models.Game, error) {
	var game models.Game
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&game.ID,
		&game.Slug,
		&game.Title,
		&game.CoverURL,
		&game.Genres,
		&game.ReleaseYear,
		&game.Description,
		&game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}
