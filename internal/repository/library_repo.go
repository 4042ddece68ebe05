package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type LibraryRepository struct {
	db DBTX
}

func NewLibraryRepository(db DBTX) *LibraryRepository {
	return &LibraryRepository{db: db}
}

type UpsertLibraryEntryInput struct {
	UserID int64
	GameID int64
	Status string
	Rating *int
	Review *string
}

// Upsert creates or replaces the user's entry for one game; a user keeps
// at most one entry per game.
func (r *LibraryRepository) Upsert(ctx context.Context, input UpsertLibraryEntryInput) (*models.LibraryEntry, error) {
	query := `
		INSERT INTO library_entries (user_id, game_id, status, rating, review)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			status = EXCLUDED.status,
			rating = EXCLUDED.rating,
			review = EXCLUDED.review,
			updated_at = NOW()
		RETURNING id, user_id, game_id, status, rating, review, created_at, updated_at
	`
	var entry models.LibraryEntry
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.GameID,
		input.Status,
		input.Rating,
		input.Review,
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.GameID,
		&entry.Status,
		&entry.Rating,
		&entry.Review,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForUser returns the user's library newest-updated first, with the
// catalog row joined in; status filters when non-empty.
func (r *LibraryRepository) ListForUser(ctx context.Context, userID int64, status string) ([]models.LibraryEntryDetail, error) {
	query := `
		SELECT
			e.id, e.user_id, e.game_id, e.status, e.rating, e.review, e.created_at, e.updated_at,
			g.id, g.slug, g.title, g.cover_url, g.genres, g.release_year, g.description, g.created_at
		FROM library_entries e
		JOIN games g ON g.id = e.game_id
		WHERE e.user_id = $1
		  AND ($2 = '' OR e.status = $2)
		ORDER BY e.updated_at DESC, e.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LibraryEntryDetail, 0)
	for rows.Next() {
		var entry models.LibraryEntryDetail
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.GameID,
			&entry.Status,
			&entry.Rating,
			&entry.Review,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.Game.ID,
			&entry.Game.Slug,
			&entry.Game.Title,
			&entry.Game.CoverURL,
			&entry.Game.Genres,
			&entry.Game.ReleaseYear,
			&entry.Game.Description,
			&entry.Game.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *LibraryRepository) GetByUserAndGame(ctx context.Context, userID, gameID int64) (*models.LibraryEntry, error) {
	query := `
		SELECT id, user_id, game_id, status, rating, review, created_at, updated_at
		FROM library_entries
		WHERE user_id = $1 AND game_id = $2
	`
	var entry models.LibraryEntry
	err := r.db.QueryRow(ctx, query, userID, gameID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.GameID,
		&entry.Status,
		&entry.Rating,
		&entry.Review,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes the user's entry for one game and reports whether a row
// was actually deleted.
func (r *LibraryRepository) Delete(ctx context.Context, userID, gameID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM library_entries
		WHERE user_id = $1 AND game_id = $2
	`, userID, gameID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
