package services

import "github.com/isdelr/contactbook/internal/models"

// ShouldVersion decides whether moving a user from prev to next appends a
// version. Favorite status is kept out of the history: an edit whose only
// change is IsFavorite is not versioned. Every other edit is, including one
// that changes nothing. Operator is not compared.
func ShouldVersion(prev, next models.Snapshot) bool {
	onlyFavoriteChanged := sameProfile(prev, next) && prev.IsFavorite != next.IsFavorite
	return !onlyFavoriteChanged
}

func sameProfile(a, b models.Snapshot) bool {
	return a.Username == b.Username &&
		equalOptional(a.Phone, b.Phone) &&
		equalOptional(a.Email, b.Email) &&
		equalOptional(a.Address, b.Address) &&
		equalOptional(a.SocialMedia, b.SocialMedia) &&
		equalOptional(a.Notes, b.Notes)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
