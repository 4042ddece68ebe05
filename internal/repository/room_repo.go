package repository

import (
	"context"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

type RoomRepository struct {
	db DBTX
}

func NewRoomRepository(db DBTX) *RoomRepository {
	return &RoomRepository{db: db}
}

type UpsertRoomInput struct {
	ID           string
	ParticipantA int64
	ParticipantB int64
	NameA        string
	NameB        string
	LastMessage  string
}

// Upsert creates the room on first contact or refreshes the display names
// and last-message preview on every later send. The last-message timestamp
// comes from NOW(), which is transaction-stable, so it matches the
// created_at of a message inserted later in the same transaction. Fields
// outside the input are left untouched, mirroring a merge-write.
func (r *RoomRepository) Upsert(ctx context.Context, input UpsertRoomInput) (*models.Room, error) {
	query := `
		INSERT INTO rooms (id, participant_a, participant_b, name_a, name_b, last_message, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name_a = EXCLUDED.name_a,
			name_b = EXCLUDED.name_b,
			last_message = EXCLUDED.last_message,
			last_message_at = NOW(),
			updated_at = NOW()
		RETURNING id, participant_a, participant_b, name_a, name_b, last_message, last_message_at, created_at, updated_at
	`
	var room models.Room
	err := r.db.QueryRow(
		ctx,
		query,
		input.ID,
		input.ParticipantA,
		input.ParticipantB,
		input.NameA,
		input.NameB,
		input.LastMessage,
	).Scan(
		&room.ID,
		&room.ParticipantA,
		&room.ParticipantB,
		&room.NameA,
		&room.NameB,
		&room.LastMessage,
		&room.LastMessageAt,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepository) GetByID(ctx context.Context, roomID string) (*models.Room, error) {
	query := `
		SELECT id, participant_a, participant_b, name_a, name_b, last_message, last_message_at, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`
	var room models.Room
	err := r.db.QueryRow(ctx, query, roomID).Scan(
		&room.ID,
		&room.ParticipantA,
		&room.ParticipantB,
		&room.NameA,
		&room.NameB,
		&room.LastMessage,
		&room.LastMessageAt,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListForParticipant returns the user's rooms newest-activity first, each
// with the count of messages still unread by that user.
func (r *RoomRepository) ListForParticipant(ctx context.Context, userID int64) ([]models.RoomSummary, error) {
	query := `
		SELECT
			r.id,
			r.participant_a,
			r.participant_b,
			r.name_a,
			r.name_b,
			r.last_message,
			r.last_message_at,
			r.created_at,
			r.updated_at,
			COALESCE(u.unread_count, 0)
		FROM rooms r
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages
			WHERE room_id = r.id
			  AND receiver_id = $1
			  AND read = FALSE
		) u ON TRUE
		WHERE r.participant_a = $1 OR r.participant_b = $1
		ORDER BY COALESCE(r.last_message_at, r.created_at) DESC, r.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.RoomSummary, 0)
	for rows.Next() {
		var summary models.RoomSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.ParticipantA,
			&summary.ParticipantB,
			&summary.NameA,
			&summary.NameB,
			&summary.LastMessage,
			&summary.LastMessageAt,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.UnreadCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
