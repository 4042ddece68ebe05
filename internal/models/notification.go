package models

import "time"

const (
	NotificationKindMessage = "message"
	NotificationKindFollow  = "follow"
)

type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Kind        string    `json:"kind"`
	ActorID     int64     `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	ActorAvatar *string   `json:"actor_avatar,omitempty"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
