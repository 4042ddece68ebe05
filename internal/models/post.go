package models

import "time"

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	GameID    *int64    `json:"game_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedPost struct {
	Post
	AuthorUsername    string  `json:"author_username"`
	AuthorDisplayName string  `json:"author_display_name"`
	AuthorAvatarURL   *string `json:"author_avatar_url,omitempty"`
	GameTitle         *string `json:"game_title,omitempty"`
}
