package models

import (
	"strings"
	"time"
)

// DefaultOperator is recorded when a request does not name who made the change.
const DefaultOperator = "system"

// User represents a contact in the directory.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Address     *string   `json:"address"`
	SocialMedia *string   `json:"social_media"`
	Notes       *string   `json:"notes"`
	IsFavorite  bool      `json:"is_favorite"`
	Operator    string    `json:"operator"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns the mutable fields of the user as they stand now.
func (u User) Snapshot() Snapshot {
	return Snapshot{
		Username:    u.Username,
		Phone:       u.Phone,
		Email:       u.Email,
		Address:     u.Address,
		SocialMedia: u.SocialMedia,
		Notes:       u.Notes,
		IsFavorite:  u.IsFavorite,
		Operator:    u.Operator,
	}
}

// UserInput is the payload accepted by create and edit requests.
// IsFavorite is a pointer so an edit can tell "absent" from "false".
type UserInput struct {
	Username    string  `json:"username" validate:"required,max=50"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	Email       *string `json:"email" validate:"omitempty,max=100"`
	Address     *string `json:"address" validate:"omitempty,max=200"`
	SocialMedia *string `json:"social_media" validate:"omitempty,max=200"`
	Notes       *string `json:"notes"`
	IsFavorite  *bool   `json:"is_favorite"`
	Operator    string  `json:"operator" validate:"max=50"`
}

// Normalize trims every string field, turns blank optional fields into nil
// and defaults the operator.
func (in *UserInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Phone = normalizeOptional(in.Phone)
	in.Email = normalizeOptional(in.Email)
	in.Address = normalizeOptional(in.Address)
	in.SocialMedia = normalizeOptional(in.SocialMedia)
	in.Notes = normalizeOptional(in.Notes)
	in.Operator = NormalizeOperator(in.Operator)
}

// NormalizeOperator trims op and falls back to DefaultOperator when blank.
func NormalizeOperator(op string) string {
	if op = strings.TrimSpace(op); op == "" {
		return DefaultOperator
	}
	return op
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
