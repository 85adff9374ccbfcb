package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultNoteSource = "local"

type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Source       string    `json:"source"`
	LastEditedAt time.Time `json:"last_edited_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateNote stores a new local note. A zero editedAt means now.
func (d *DB) CreateNote(title, content string, editedAt time.Time) (*Note, error) {
	if editedAt.IsZero() {
		editedAt = time.Now()
	}
	note := &Note{
		ID:           uuid.NewString(),
		Title:        title,
		Content:      content,
		Source:       DefaultNoteSource,
		LastEditedAt: editedAt.UTC(),
	}

	_, err := d.Exec(`
		INSERT INTO notes (id, title, content, source, last_edited_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.ID, note.Title, note.Content, note.Source, note.LastEditedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return d.GetNote(note.ID)
}

// UpsertNote inserts or refreshes a note imported from an external source.
func (d *DB) UpsertNote(note Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Source == "" {
		note.Source = DefaultNoteSource
	}
	_, err := d.Exec(`
		INSERT INTO notes (id, title, content, source, last_edited_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			source = excluded.source,
			last_edited_at = excluded.last_edited_at
	`, note.ID, note.Title, note.Content, note.Source, note.LastEditedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

func (d *DB) GetNote(id string) (*Note, error) {
	var n Note
	err := d.QueryRow(`
		SELECT id, title, content, source, last_edited_at, created_at
		FROM notes WHERE id = ?
	`, id).Scan(&n.ID, &n.Title, &n.Content, &n.Source, &n.LastEditedAt, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &n, nil
}

// ListRecentNotes returns up to limit notes, most recently edited first.
func (d *DB) ListRecentNotes(limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.Query(`
		SELECT id, title, content, source, last_edited_at, created_at
		FROM notes
		ORDER BY last_edited_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Source, &n.LastEditedAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (d *DB) DeleteNote(id string) error {
	result, err := d.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNoteNotFound
	}
	return nil
}
