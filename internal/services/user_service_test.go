package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/isdelr/contactbook/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_RecordsInitialVersion(t *testing.T) {
	users, versions, _ := newTestServices(t)
	ctx := context.Background()

	user, err := users.CreateUser(ctx, models.UserInput{
		Username: "  alice ",
		Email:    strPtr("a@x.com"),
		Phone:    strPtr("  "),
		Notes:    strPtr("met at conf"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Nil(t, user.Phone)
	assert.Equal(t, models.DefaultOperator, user.Operator)
	assert.False(t, user.IsFavorite)
	assert.True(t, user.CreatedAt.Equal(user.UpdatedAt))

	history, err := versions.GetVersionsForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, user.ID, history[0].UserID)
	assert.Equal(t, user.Snapshot(), history[0].Snapshot)
	assert.True(t, history[0].UpdatedAt.Equal(user.CreatedAt))
}

func TestCreateUser_Validation(t *testing.T) {
	users, _, db := newTestServices(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, models.UserInput{Username: "   "})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username cannot be empty", vErr.Message)

	_, err = users.CreateUser(ctx, models.UserInput{Username: strings.Repeat("x", 51)})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username must be at most 50 characters", vErr.Message)

	_, err = users.CreateUser(ctx, models.UserInput{Username: "bob", SocialMedia: strPtr(strings.Repeat("s", 201))})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "social_media must be at most 200 characters", vErr.Message)

	assert.Equal(t, 0, countTable(t, db, "users"))
	assert.Equal(t, 0, countTable(t, db, "user_versions"))
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	users, _, db := newTestServices(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, models.UserInput{Username: "alice"})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, models.UserInput{Username: "alice", Email: strPtr("other@x.com")})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, `"alice"`)

	assert.Equal(t, 1, countTable(t, db, "users"))
	assert.Equal(t, 1, countTable(t, db, "user_versions"))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	users, _, db := newTestServices(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: strPtr("a@x.com")})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, models.UserInput{Username: "bob", Email: strPtr("a@x.com")})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "email")
	assert.Contains(t, vErr.Message, "a@x.com")

	assert.Equal(t, 1, countTable(t, db, "users"))
}

func TestCreateUser_BlankEmailsDoNotCollide(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: strPtr("")})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, models.UserInput{Username: "bob", Email: strPtr("  ")})
	require.NoError(t, err)
}

func TestGetAllUsers_Ordering(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	oldFav, err := users.CreateUser(ctx, models.UserInput{Username: "old-favorite", IsFavorite: boolPtr(true)})
	require.NoError(t, err)
	plain, err := users.CreateUser(ctx, models.UserInput{Username: "plain"})
	require.NoError(t, err)
	newFav, err := users.CreateUser(ctx, models.UserInput{Username: "new-favorite", IsFavorite: boolPtr(true)})
	require.NoError(t, err)
	newest, err := users.CreateUser(ctx, models.UserInput{Username: "newest"})
	require.NoError(t, err)

	list, err := users.GetAllUsers(ctx, "")
	require.NoError(t, err)

	ids := make([]string, len(list))
	for i, u := range list {
		ids[i] = u.ID
	}
	assert.Equal(t, []string{newFav.ID, oldFav.ID, newest.ID, plain.ID}, ids)
}

func TestGetAllUsers_Empty(t *testing.T) {
	users, _, _ := newTestServices(t)

	list, err := users.GetAllUsers(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetAllUsers_Keyword(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: strPtr("alice@Example.com")})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, models.UserInput{Username: "bob", Notes: strPtr("Knows EXAMPLE corp")})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, models.UserInput{Username: "carol", Phone: strPtr("555-0100")})
	require.NoError(t, err)

	list, err := users.GetAllUsers(ctx, " example ")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Username)
	assert.Equal(t, "alice", list[1].Username)

	list, err = users.GetAllUsers(ctx, "0100")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "carol", list[0].Username)

	list, err = users.GetAllUsers(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetUserByID_NotFound(t *testing.T) {
	users, _, _ := newTestServices(t)

	_, err := users.GetUserByID(context.Background(), "missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Resource)
}

func TestUpdateUser_NotesEditAppendsVersion(t *testing.T) {
	users, versions, _ := newTestServices(t)
	ctx := context.Background()

	created, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: strPtr("a@x.com")})
	require.NoError(t, err)

	updated, err := users.UpdateUser(ctx, created.ID, models.UserInput{
		Username: "alice",
		Email:    strPtr("a@x.com"),
		Notes:    strPtr("prefers email"),
		Operator: "carol",
	})
	require.NoError(t, err)
	assert.Equal(t, "prefers email", *updated.Notes)
	assert.Equal(t, "carol", updated.Operator)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	history, err := versions.GetVersionsForUser(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, updated.Snapshot(), history[0].Snapshot)
	assert.Equal(t, created.Snapshot(), history[1].Snapshot)

	fetched, err := users.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Snapshot(), fetched.Snapshot())
	assert.True(t, fetched.UpdatedAt.Equal(updated.UpdatedAt))
}

func TestUpdateUser_FavoriteOnlyEditSkipsVersion(t *testing.T) {
	users, versions, _ := newTestServices(t)
	ctx := context.Background()

	created, err := users.CreateUser(ctx, models.UserInput{Username: "alice"})
	require.NoError(t, err)

	updated, err := users.UpdateUser(ctx, created.ID, models.UserInput{Username: "alice", IsFavorite: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)

	history, err := versions.GetVersionsForUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdateUser_FavoriteWithOtherFieldSnapshotsPostEdit(t *testing.T) {
	users, versions, _ := newTestServices(t)
	ctx := context.Background()

	created, err := users.CreateUser(ctx, models.UserInput{Username: "alice"})
	require.NoError(t, err)

	_, err = users.UpdateUser(ctx, created.ID, models.UserInput{
		Username:   "alice",
		Phone:      strPtr("123"),
		IsFavorite: boolPtr(true),
	})
	require.NoError(t, err)

	history, err := versions.GetVersionsForUser(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsFavorite)
	assert.Equal(t, "123", *history[0].Phone)
}

func TestUpdateUser_AbsentFavoriteKeepsCurrent(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	created, err := users.CreateUser(ctx, models.UserInput{Username: "alice", IsFavorite: boolPtr(true)})
	require.NoError(t, err)

	updated, err := users.UpdateUser(ctx, created.ID, models.UserInput{Username: "alice", Notes: strPtr("x")})
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)
}

func TestUpdateUser_Uniqueness(t *testing.T) {
	users, versions, _ := newTestServices(t)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: strPtr("a@x.com")})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, models.UserInput{Username: "bob", Email: strPtr("b@x.com")})
	require.NoError(t, err)

	// Keeping its own username and email is fine.
	_, err = users.UpdateUser(ctx, alice.ID, models.UserInput{Username: "alice", Email: strPtr("a@x.com"), Phone: strPtr("1")})
	require.NoError(t, err)

	var vErr *ValidationError
	_, err = users.UpdateUser(ctx, alice.ID, models.UserInput{Username: "bob"})
	require.ErrorAs(t, err, &vErr)

	_, err = users.UpdateUser(ctx, alice.ID, models.UserInput{Username: "alice", Email: strPtr("b@x.com")})
	require.ErrorAs(t, err, &vErr)

	_, err = users.UpdateUser(ctx, alice.ID, models.UserInput{Username: " "})
	require.ErrorAs(t, err, &vErr)

	history, err := versions.GetVersionsForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	current, err := users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", *current.Email)
}

func TestUpdateUser_NotFound(t *testing.T) {
	users, _, _ := newTestServices(t)

	_, err := users.UpdateUser(context.Background(), "missing", models.UserInput{Username: "x"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestToggleFavorite_NeverVersions(t *testing.T) {
	users, versions, _ := newTestServices(t)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, models.UserInput{Username: "alice"})
	require.NoError(t, err)
	alice, err = users.UpdateUser(ctx, alice.ID, models.UserInput{Username: "alice", Phone: strPtr("123")})
	require.NoError(t, err)

	first, err := users.ToggleFavorite(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.True(t, first.IsFavorite)
	assert.Equal(t, models.DefaultOperator, first.Operator)
	assert.True(t, first.UpdatedAt.After(alice.UpdatedAt))

	second, err := users.ToggleFavorite(ctx, alice.ID, " dave ")
	require.NoError(t, err)
	assert.False(t, second.IsFavorite)
	assert.Equal(t, "dave", second.Operator)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	history, err := versions.GetVersionsForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	stored, err := users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.IsFavorite, stored.IsFavorite)
}

func TestToggleFavorite_OperatorTooLong(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, models.UserInput{Username: "alice"})
	require.NoError(t, err)

	_, err = users.ToggleFavorite(ctx, alice.ID, strings.Repeat("o", 51))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "operator must be at most 50 characters", vErr.Message)

	stored, err := users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsFavorite)
	assert.Equal(t, models.DefaultOperator, stored.Operator)

	toggled, err := users.ToggleFavorite(ctx, alice.ID, strings.Repeat("é", 50))
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)
}

func TestToggleFavorite_NotFound(t *testing.T) {
	users, _, _ := newTestServices(t)

	_, err := users.ToggleFavorite(context.Background(), "missing", "")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteUser_CascadesVersions(t *testing.T) {
	users, versions, db := newTestServices(t)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, models.UserInput{Username: "alice"})
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, models.UserInput{Username: "bob"})
	require.NoError(t, err)
	_, err = users.UpdateUser(ctx, alice.ID, models.UserInput{Username: "alice", Notes: strPtr("n")})
	require.NoError(t, err)

	deleted, err := users.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)

	_, err = versions.GetVersionsForUser(ctx, alice.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	assert.Equal(t, 1, countTable(t, db, "users"))
	assert.Equal(t, 1, countTable(t, db, "user_versions"))

	remaining, err := versions.GetVersionsForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	_, err = users.DeleteUser(ctx, alice.ID)
	assert.ErrorAs(t, err, &nf)
}

func TestFromConstraintError(t *testing.T) {
	assert.Equal(t, assert.AnError, fromConstraintError(assert.AnError, "alice", nil))
	assert.Nil(t, fromConstraintError(nil, "alice", nil))
}

func TestFromConstraintError_DriverUniqueFailure(t *testing.T) {
	users, _, db := newTestServices(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: strPtr("a@x.com")})
	require.NoError(t, err)

	insert := `INSERT INTO users (id, username, email, is_favorite, operator, created_at, updated_at)
		VALUES (?, ?, ?, 0, 'system', datetime('now'), datetime('now'))`

	_, dupName := db.ExecContext(ctx, insert, "u2", "alice", nil)
	require.Error(t, dupName)
	var vErr *ValidationError
	require.ErrorAs(t, fromConstraintError(dupName, "alice", nil), &vErr)
	assert.Equal(t, `username "alice" already exists`, vErr.Message)

	email := "a@x.com"
	_, dupEmail := db.ExecContext(ctx, insert, "u3", "bob", email)
	require.Error(t, dupEmail)
	require.ErrorAs(t, fromConstraintError(dupEmail, "bob", &email), &vErr)
	assert.Equal(t, `email "a@x.com" is already in use`, vErr.Message)
}

func TestToggleFavorite_Logs(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, models.UserInput{Username: "alice"})
	require.NoError(t, err)

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	_, err = users.ToggleFavorite(ctx, alice.ID, "ops")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"user_id":"`+alice.ID+`"`)
	assert.Contains(t, buf.String(), `"is_favorite":true`)
}
