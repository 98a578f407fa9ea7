package services

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/contactbook/internal/database"
	"github.com/stretchr/testify/require"
)

// stepClock returns a Clock that advances by one second on every call.
func stepClock() Clock {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestServices(t *testing.T) (*UserService, *VersionService, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	versions := NewVersionService(db)
	return NewUserService(db, versions, stepClock()), versions, db
}

func countTable(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
