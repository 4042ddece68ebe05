package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, userID int64, gameID *int64, body string) (*models.Post, error) {
	query := `
		INSERT INTO posts (user_id, game_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, game_id, body, created_at
	`
	var post models.Post
	err := r.db.QueryRow(ctx, query, userID, gameID, body).Scan(
		&post.ID,
		&post.UserID,
		&post.GameID,
		&post.Body,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post only when it belongs to the given user.
func (r *PostRepository) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM posts
		WHERE id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Feed returns the user's own posts plus those of everyone they follow,
// newest first, with author and game context joined in.
func (r *PostRepository) Feed(ctx context.Context, userID int64, limit, offset int) ([]models.FeedPost, int, error) {
	scope := `
		WHERE p.user_id = $1
		   OR p.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts p `+scope, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			p.id, p.user_id, p.game_id, p.body, p.created_at,
			a.username, a.display_name, a.avatar_url,
			g.title
		FROM posts p
		JOIN profiles a ON a.user_id = p.user_id
		LEFT JOIN games g ON g.id = p.game_id `+scope+`
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]models.FeedPost, 0)
	for rows.Next() {
		var post models.FeedPost
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.GameID,
			&post.Body,
			&post.CreatedAt,
			&post.AuthorUsername,
			&post.AuthorDisplayName,
			&post.AuthorAvatarURL,
			&post.GameTitle,
		); err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
