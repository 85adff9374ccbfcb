package migrations

import "database/sql"

func init() {
	Register(Migration{
		Version: 3,
		Name:    "note_source",
		Up:      noteSource,
	})
}

// noteSource records where a note came from so imported notes can be refreshed in place.
func noteSource(db *sql.DB) error {
	if err := AddColumnIfNotExists(db, "notes", "source", "TEXT NOT NULL DEFAULT 'local'"); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_notes_source ON notes(source)`)
	return err
}
