package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/contactbook/internal/database"
	"github.com/isdelr/contactbook/internal/models"
	"github.com/rs/zerolog/log"
)

// Clock returns the current time. Services take one so tests can control it.
type Clock func() time.Time

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetAllUsers(ctx context.Context, keyword string) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, input models.UserInput) (models.User, error)
	UpdateUser(ctx context.Context, id string, input models.UserInput) (models.User, error)
	DeleteUser(ctx context.Context, id string) (models.User, error)
	ToggleFavorite(ctx context.Context, id, operator string) (models.User, error)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const userColumns = `id, username, phone, email, address, social_media, notes, is_favorite, operator, created_at, updated_at`

// UserService provides business logic for the contact directory.
type UserService struct {
	db       *sql.DB
	versions *VersionService
	now      Clock
}

// NewUserService creates a new UserService. A nil clock means time.Now.
func NewUserService(db *sql.DB, versions *VersionService, clock Clock) *UserService {
	if clock == nil {
		clock = time.Now
	}
	return &UserService{
		db:       db,
		versions: versions,
		now:      clock,
	}
}

// GetAllUsers lists users with favorites first, newest first within each tier.
// A non-empty keyword keeps only users whose text fields contain it, ignoring case.
func (s *UserService) GetAllUsers(ctx context.Context, keyword string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}

	if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
		cols := []string{"username", "phone", "email", "address", "social_media", "notes"}
		conds := make([]string, len(cols))
		for i, col := range cols {
			conds[i] = fmt.Sprintf("instr(lower(coalesce(%s, '')), ?) > 0", col)
			args = append(args, keyword)
		}
		query += ` WHERE ` + strings.Join(conds, " OR ")
	}
	query += ` ORDER BY is_favorite DESC, created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return getUser(ctx, s.db, id)
}

// CreateUser validates the input, stores a new user and records its initial version.
func (s *UserService) CreateUser(ctx context.Context, input models.UserInput) (models.User, error) {
	input.Normalize()
	if err := validateUserInput(input); err != nil {
		return models.User{}, err
	}

	now := s.now().UTC()
	user := models.User{
		ID:          uuid.New().String(),
		Username:    input.Username,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		SocialMedia: input.SocialMedia,
		Notes:       input.Notes,
		IsFavorite:  input.IsFavorite != nil && *input.IsFavorite,
		Operator:    input.Operator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := checkUnique(ctx, tx, user.Username, user.Email, ""); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Username, user.Phone, user.Email, user.Address, user.SocialMedia,
			user.Notes, user.IsFavorite, user.Operator, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return fromConstraintError(err, user.Username, user.Email)
		}

		_, err = s.versions.appendVersion(ctx, tx, user)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("user_id", user.ID).Str("operator", user.Operator).Msg("User created")
	return user, nil
}

// UpdateUser replaces the user's fields and appends a version unless the only
// change is the favorite flag. An absent is_favorite keeps the current value.
func (s *UserService) UpdateUser(ctx context.Context, id string, input models.UserInput) (models.User, error) {
	input.Normalize()

	var updated models.User
	var versioned bool
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		current, err := getUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := validateUserInput(input); err != nil {
			return err
		}
		if err := checkUnique(ctx, tx, input.Username, input.Email, id); err != nil {
			return err
		}

		updated = current
		updated.Username = input.Username
		updated.Phone = input.Phone
		updated.Email = input.Email
		updated.Address = input.Address
		updated.SocialMedia = input.SocialMedia
		updated.Notes = input.Notes
		if input.IsFavorite != nil {
			updated.IsFavorite = *input.IsFavorite
		}
		updated.Operator = input.Operator
		updated.UpdatedAt = s.touch(current)

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET username = ?, phone = ?, email = ?, address = ?, social_media = ?, notes = ?,
			    is_favorite = ?, operator = ?, updated_at = ?
			WHERE id = ?`,
			updated.Username, updated.Phone, updated.Email, updated.Address, updated.SocialMedia,
			updated.Notes, updated.IsFavorite, updated.Operator, updated.UpdatedAt, id,
		)
		if err != nil {
			return fromConstraintError(err, updated.Username, updated.Email)
		}

		if versioned = ShouldVersion(current.Snapshot(), updated.Snapshot()); versioned {
			_, err = s.versions.appendVersion(ctx, tx, updated)
		}
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("user_id", id).Bool("versioned", versioned).Msg("User updated")
	return updated, nil
}

// DeleteUser removes a user; its versions go with it. The deleted user is returned.
func (s *UserService) DeleteUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if user, err = getUser(ctx, tx, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	log.Warn().Str("user_id", id).Str("username", user.Username).Msg("User deleted")
	return user, nil
}

// ToggleFavorite flips the favorite flag. It never records a version.
func (s *UserService) ToggleFavorite(ctx context.Context, id, operator string) (models.User, error) {
	operator = models.NormalizeOperator(operator)
	if err := validateOperator(operator); err != nil {
		return models.User{}, err
	}

	var user models.User
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		current, err := getUser(ctx, tx, id)
		if err != nil {
			return err
		}

		user = current
		user.IsFavorite = !current.IsFavorite
		user.Operator = operator
		user.UpdatedAt = s.touch(current)

		_, err = tx.ExecContext(ctx,
			"UPDATE users SET is_favorite = ?, operator = ?, updated_at = ? WHERE id = ?",
			user.IsFavorite, user.Operator, user.UpdatedAt, id,
		)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("user_id", id).Bool("is_favorite", user.IsFavorite).Str("operator", user.Operator).Msg("User favorite toggled")
	return user, nil
}

// touch returns the new updated_at for a mutation of u, never earlier than created_at.
func (s *UserService) touch(u models.User) time.Time {
	now := s.now().UTC()
	if now.Before(u.CreatedAt) {
		return u.CreatedAt
	}
	return now
}

// checkUnique rejects a username or email held by a user other than excludeID.
func checkUnique(ctx context.Context, q queryer, username string, email *string, excludeID string) error {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM users WHERE username = ? AND id <> ? LIMIT 1", username, excludeID).Scan(&exists)
	switch {
	case err == nil:
		return &ValidationError{Message: fmt.Sprintf("username %q already exists", username)}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check username: %w", err)
	}

	if email == nil {
		return nil
	}
	err = q.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email = ? AND id <> ? LIMIT 1", *email, excludeID).Scan(&exists)
	switch {
	case err == nil:
		return &ValidationError{Message: fmt.Sprintf("email %q is already in use", *email)}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

func getUser(ctx context.Context, q queryer, id string) (models.User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, &NotFoundError{Resource: "user", ID: id}
		}
		return models.User{}, err
	}
	return user, nil
}

// scanUser is a helper to scan a user from a row or rows object.
func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	var phone, email, address, socialMedia, notes sql.NullString

	err := scanner.Scan(
		&user.ID, &user.Username, &phone, &email, &address, &socialMedia, &notes,
		&user.IsFavorite, &user.Operator, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	user.Phone = nullableString(phone)
	user.Email = nullableString(email)
	user.Address = nullableString(address)
	user.SocialMedia = nullableString(socialMedia)
	user.Notes = nullableString(notes)
	return user, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
