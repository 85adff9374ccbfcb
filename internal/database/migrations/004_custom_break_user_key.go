package migrations

import (
	"database/sql"
	"fmt"
)

func init() {
	Register(Migration{
		Version: 4,
		Name:    "custom_break_user_key",
		Up:      customBreakUserKey,
	})
}

// customBreakUserKey scopes custom break ids to their user.
func customBreakUserKey(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`CREATE TABLE custom_breaks_new (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL CHECK(duration_minutes BETWEEN 3 AND 60),
			activity TEXT NOT NULL,
			reason TEXT,
			description TEXT,
			icon TEXT,
			custom BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, id)
		)`,
		`INSERT INTO custom_breaks_new
			SELECT id, user_id, start_time, duration_minutes, activity, reason, description, icon, custom, created_at
			FROM custom_breaks`,
		`DROP TABLE custom_breaks`,
		`ALTER TABLE custom_breaks_new RENAME TO custom_breaks`,
		`CREATE INDEX IF NOT EXISTS idx_custom_breaks_user ON custom_breaks(user_id, start_time)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
