package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type CreateNotificationInput struct {
	UserID      int64
	Kind        string
	ActorID     int64
	ActorName   string
	ActorAvatar *string
	Body        string
}

func (r *NotificationRepository) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, kind, actor_id, actor_name, actor_avatar, body, read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, user_id, kind, actor_id, actor_name, actor_avatar, body, read, created_at
	`
	var notification models.Notification
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.Kind,
		input.ActorID,
		input.ActorName,
		input.ActorAvatar,
		input.Body,
	).Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Kind,
		&notification.ActorID,
		&notification.ActorName,
		&notification.ActorAvatar,
		&notification.Body,
		&notification.Read,
		&notification.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, kind, actor_id, actor_name, actor_avatar, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var notification models.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Kind,
			&notification.ActorID,
			&notification.ActorName,
			&notification.ActorAvatar,
			&notification.Body,
			&notification.Read,
			&notification.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flips the user's notification to read. Re-reading an
// already-read notification still counts as success; false only means
// the row does not exist or belongs to someone else.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1
		  AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE
	`, userID).Scan(&count)
	return count, err
}
