package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/database/migrations"
)

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrBreakNotFound   = errors.New("break not found")
	ErrInvalidDuration = errors.New("duration must be between 3 and 60 minutes")
	ErrDuplicateBreak  = errors.New("duplicate break id")
)

type DB struct {
	*sql.DB
}

func New(dbPath string, logger zerolog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.RunMigrations(db, logger.With().Str("component", "migrations").Logger()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{db}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}
