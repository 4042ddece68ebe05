package models

import "time"

type Game struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	CoverURL    *string   `json:"cover_url,omitempty"`
	Genres      []string  `json:"genres"`
	ReleaseYear *int      `json:"release_year,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type LibraryEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	GameID    int64     `json:"game_id"`
	Status    string    `json:"status"`
	Rating    *int      `json:"rating,omitempty"`
	Review    *string   `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LibraryEntryDetail struct {
	LibraryEntry
	Game Game `json:"game"`
}
