package database

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:", zerolog.Nop())
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CreateTestNote inserts a note edited at editedAt.
func CreateTestNote(t *testing.T, db *DB, title string, editedAt time.Time) *Note {
	t.Helper()

	note, err := db.CreateNote(title, "content for "+title, editedAt)
	require.NoError(t, err, "failed to create test note")
	return note
}
