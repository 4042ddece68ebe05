package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

type CreateMessageInput struct {
	RoomID       string
	SenderID     int64
	ReceiverID   int64
	SenderName   string
	ReceiverName string
	Body         string
}

// Create appends a message with a server-assigned creation timestamp.
// Sender, receiver, body and timestamp never change after this point;
// only the read flag may flip later.
func (r *MessageRepository) Create(ctx context.Context, input CreateMessageInput) (*models.Message, error) {
	query := `
		INSERT INTO messages (room_id, sender_id, receiver_id, sender_name, receiver_name, body, read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, room_id, sender_id, receiver_id, sender_name, receiver_name, body, read, created_at
	`
	var message models.Message
	err := r.db.QueryRow(
		ctx,
		query,
		input.RoomID,
		input.SenderID,
		input.ReceiverID,
		input.SenderName,
		input.ReceiverName,
		input.Body,
	).Scan(
		&message.ID,
		&message.RoomID,
		&message.SenderID,
		&message.ReceiverID,
		&message.SenderName,
		&message.ReceiverName,
		&message.Body,
		&message.Read,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByRoom returns the room's full log in non-decreasing creation order,
// ties broken by id so replays are stable.
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `
		SELECT id, room_id, sender_id, receiver_id, sender_name, receiver_name, body, read, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var message models.Message
		if err := rows.Scan(
			&message.ID,
			&message.RoomID,
			&message.SenderID,
			&message.ReceiverID,
			&message.SenderName,
			&message.ReceiverName,
			&message.Body,
			&message.Read,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListUnreadIDs returns the ids of messages in the room still unread by
// the given receiver, oldest first.
func (r *MessageRepository) ListUnreadIDs(ctx context.Context, roomID string, receiverID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id
		FROM messages
		WHERE room_id = $1
		  AND receiver_id = $2
		  AND read = FALSE
		ORDER BY created_at ASC, id ASC
	`, roomID, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// MarkRead flips one message to read. The guard clauses make the update a
// no-op on already-read rows and on messages not addressed to the reader,
// so repeated calls converge on the same state.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID int64, receiverID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE messages
		SET read = TRUE
		WHERE id = $1
		  AND receiver_id = $2
		  AND read = FALSE
	`, messageID, receiverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
