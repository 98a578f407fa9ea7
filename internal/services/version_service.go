package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/contactbook/internal/database"
	"github.com/isdelr/contactbook/internal/models"
	"github.com/rs/zerolog/log"
)

// VersionServiceProvider defines the interface for the version history.
type VersionServiceProvider interface {
	GetVersionsForUser(ctx context.Context, userID string) ([]models.UserVersion, error)
	DeleteVersion(ctx context.Context, versionID string) error
}

// VersionService manages the per-user version history.
type VersionService struct {
	db *sql.DB
}

// NewVersionService creates a new VersionService.
func NewVersionService(db *sql.DB) *VersionService {
	return &VersionService{db: db}
}

// GetVersionsForUser retrieves all versions for a given user, newest first.
func (s *VersionService) GetVersionsForUser(ctx context.Context, userID string) ([]models.UserVersion, error) {
	var versions []models.UserVersion
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := getUser(ctx, tx, userID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id, user_id, username, phone, email, address, social_media, notes, is_favorite, operator, updated_at
			FROM user_versions WHERE user_id = ?
			ORDER BY updated_at DESC, rowid DESC`, userID)
		if err != nil {
			return fmt.Errorf("failed to query versions: %w", err)
		}
		defer rows.Close()

		versions = []models.UserVersion{}
		for rows.Next() {
			v, err := scanVersion(rows)
			if err != nil {
				return err
			}
			versions = append(versions, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// DeleteVersion removes a single version. The owning user is untouched.
func (s *VersionService) DeleteVersion(ctx context.Context, versionID string) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM user_versions WHERE id = ?", versionID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Resource: "version", ID: versionID}
		}
		return nil
	})
	if err == nil {
		log.Warn().Str("version_id", versionID).Msg("Version deleted")
	}
	return err
}

// appendVersion records the user's current fields inside the caller's
// transaction, stamped with the user's updated_at.
func (s *VersionService) appendVersion(ctx context.Context, tx *sql.Tx, user models.User) (models.UserVersion, error) {
	version := models.UserVersion{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Snapshot:  user.Snapshot(),
		UpdatedAt: user.UpdatedAt,
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_versions (id, user_id, username, phone, email, address, social_media, notes, is_favorite, operator, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		version.ID, version.UserID, version.Username, version.Phone, version.Email, version.Address,
		version.SocialMedia, version.Notes, version.IsFavorite, version.Operator, version.UpdatedAt,
	)
	if err != nil {
		return models.UserVersion{}, fmt.Errorf("failed to append version: %w", err)
	}
	return version, nil
}

func scanVersion(scanner interface{ Scan(...interface{}) error }) (models.UserVersion, error) {
	var v models.UserVersion
	var phone, email, address, socialMedia, notes sql.NullString

	err := scanner.Scan(
		&v.ID, &v.UserID, &v.Username, &phone, &email, &address, &socialMedia, &notes,
		&v.IsFavorite, &v.Operator, &v.UpdatedAt,
	)
	if err != nil {
		return models.UserVersion{}, err
	}

	v.Phone = nullableString(phone)
	v.Email = nullableString(email)
	v.Address = nullableString(address)
	v.SocialMedia = nullableString(socialMedia)
	v.Notes = nullableString(notes)
	return v, nil
}
