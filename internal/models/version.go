package models

import "time"

// Snapshot holds the mutable fields of a User at one point in time.
type Snapshot struct {
	Username    string  `json:"username"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	SocialMedia *string `json:"social_media"`
	Notes       *string `json:"notes"`
	IsFavorite  bool    `json:"is_favorite"`
	Operator    string  `json:"operator"`
}

// UserVersion is an immutable historical record of a user's fields.
type UserVersion struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Snapshot
	UpdatedAt time.Time `json:"updated_at"`
}
