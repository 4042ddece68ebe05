package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type FollowRepository struct {
	db DBTX
}

func NewFollowRepository(db DBTX) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts the follow edge. It reports false when the edge already
// existed, without treating the duplicate as an error.
func (r *FollowRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, followerID, followeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM follows
		WHERE follower_id = $1 AND followee_id = $2
	`, followerID, followeeID)
	return err
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE follower_id = $1 AND followee_id = $2
		)
	`, followerID, followeeID).Scan(&exists)
	return exists, err
}

func (r *FollowRepository) Counts(ctx context.Context, userID int64) (followers int, following int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`, userID).Scan(&followers, &following)
	return followers, following, err
}

func (r *FollowRepository) ListFollowers(ctx context.Context, userID int64) ([]models.Profile, error) {
	query := `
		SELECT p.user_id, p.username, p.display_name, p.bio, p.avatar_url, p.favorite_genres, p.created_at, p.updated_at
		FROM follows f
		JOIN profiles p ON p.user_id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`
	return r.listProfiles(ctx, query, userID)
}

func (r *FollowRepository) ListFollowing(ctx context.Context, userID int64) ([]models.Profile, error) {
	query := `
		SELECT p.user_id, p.username, p.display_name, p.bio, p.avatar_url, p.favorite_genres, p.created_at, p.updated_at
		FROM follows f
		JOIN profiles p ON p.user_id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`
	return r.listProfiles(ctx, query, userID)
}

func (r *FollowRepository) listProfiles(ctx context.Context, query string, userID int64) ([]models.Profile, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var profile models.Profile
		if err := rows.Scan(
			&profile.UserID,
			&profile.Username,
			&profile.DisplayName,
			&profile.Bio,
			&profile.AvatarURL,
			&profile.FavoriteGenres,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
