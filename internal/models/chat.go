package models

import "time"

// Room is the conversation scope between exactly two users. Its ID is
// derived from the sorted participant ids, so both sides always resolve
// to the same row no matter who sends first.
type Room struct {
	ID            string     `json:"id"`
	ParticipantA  int64      `json:"participant_a"`
	ParticipantB  int64      `json:"participant_b"`
	NameA         string     `json:"name_a"`
	NameB         string     `json:"name_b"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Peer returns the other participant's id, or 0 if userID is not a
// participant of the room.
func (r *Room) Peer(userID int64) int64 {
	switch userID {
	case r.ParticipantA:
		return r.ParticipantB
	case r.ParticipantB:
		return r.ParticipantA
	default:
		return 0
	}
}

type Message struct {
	ID           int64     `json:"id"`
	RoomID       string    `json:"room_id"`
	SenderID     int64     `json:"sender_id"`
	ReceiverID   int64     `json:"receiver_id"`
	SenderName   string    `json:"sender_name"`
	ReceiverName string    `json:"receiver_name"`
	Body         string    `json:"body"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

type RoomSummary struct {
	Room
	UnreadCount int `json:"unread_count"`
}
