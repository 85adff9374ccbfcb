package migrations

import "database/sql"

func init() {
	Register(Migration{
		Version: 2,
		Name:    "google_tokens",
		Up:      googleTokens,
	})
}

func googleTokens(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS google_tokens (
			account TEXT PRIMARY KEY,
			access_token_encrypted BLOB NOT NULL,
			refresh_token_encrypted BLOB NOT NULL,
			token_type TEXT DEFAULT 'Bearer',
			expiry DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}
