package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "initial_schema",
		Up:      initialSchema,
	})
}

func initialSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			last_edited_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_last_edited ON notes(last_edited_at DESC)`,

		`CREATE TABLE IF NOT EXISTS custom_breaks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL CHECK(duration_minutes BETWEEN 3 AND 60),
			activity TEXT NOT NULL,
			reason TEXT,
			description TEXT,
			icon TEXT,
			custom BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_custom_breaks_user ON custom_breaks(user_id, start_time)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
