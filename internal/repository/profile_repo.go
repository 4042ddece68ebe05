package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, username, display_name, favorite_genres)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(
		ctx,
		query,
		profile.UserID,
		profile.Username,
		profile.DisplayName,
		profile.FavoriteGenres,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `
		SELECT user_id, username, display_name, bio, avatar_url, favorite_genres, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	return r.scanOne(ctx, query, userID)
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := `
		SELECT user_id, username, display_name, bio, avatar_url, favorite_genres, created_at, updated_at
		FROM profiles
		WHERE username = $1
	`
	return r.scanOne(ctx, query, username)
}

func (r *ProfileRepository) scanOne(ctx context.Context, query string, arg any) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&profile.UserID,
		&profile.Username,
		&profile.DisplayName,
		&profile.Bio,
		&profile.AvatarURL,
		&profile.FavoriteGenres,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type UpdateProfileInput struct {
	DisplayName    *string
	Bio            *string
	FavoriteGenres *[]string
}

func (r *ProfileRepository) Update(ctx context.Context, userID int64, input UpdateProfileInput) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET display_name = COALESCE($2, display_name),
		    bio = COALESCE($3, bio),
		    favorite_genres = COALESCE($4, favorite_genres),
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, username, display_name, bio, avatar_url, favorite_genres, created_at, updated_at
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, userID, input.DisplayName, input.Bio, input.FavoriteGenres).Scan(
		&profile.UserID,
		&profile.Username,
		&profile.DisplayName,
		&profile.Bio,
		&profile.AvatarURL,
		&profile.FavoriteGenres,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET avatar_url = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, avatarURL)
	return err
}
