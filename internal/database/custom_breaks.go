package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinBreakDuration = 3
	MaxBreakDuration = 60
)

// CustomBreak is a user-edited or user-added break.
type CustomBreak struct {
	ID              string    `json:"id"`
	UserID          string    `json:"-"`
	Time            time.Time `json:"time"`
	DurationMinutes int       `json:"duration"`
	Activity        string    `json:"activity"`
	Reason          string    `json:"reason,omitempty"`
	Description     string    `json:"description,omitempty"`
	Icon            string    `json:"icon,omitempty"`
	Custom          bool      `json:"custom"`
}

func validateDuration(minutes int) error {
	if minutes < MinBreakDuration || minutes > MaxBreakDuration {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, minutes)
	}
	return nil
}

// ReplaceCustomBreaks atomically swaps the user's break list for breaks.
func (d *DB) ReplaceCustomBreaks(userID string, breaks []CustomBreak) ([]CustomBreak, error) {
	seen := make(map[string]bool, len(breaks))
	for _, b := range breaks {
		if err := validateDuration(b.DurationMinutes); err != nil {
			return nil, err
		}
		if b.ID == "" {
			continue
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBreak, b.ID)
		}
		seen[b.ID] = true
	}

	tx, err := d.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM custom_breaks WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to clear custom breaks: %w", err)
	}

	saved := make([]CustomBreak, 0, len(breaks))
	for _, b := range breaks {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.UserID = userID
		b.Time = b.Time.UTC()
		_, err := tx.Exec(`
			INSERT INTO custom_breaks (id, user_id, start_time, duration_minutes, activity, reason, description, icon, custom)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, b.ID, userID, b.Time, b.DurationMinutes, b.Activity, b.Reason, b.Description, b.Icon, b.Custom)
		if err != nil {
			return nil, fmt.Errorf("failed to insert custom break: %w", err)
		}
		saved = append(saved, b)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit custom breaks: %w", err)
	}
	return saved, nil
}

// AddCustomBreak appends one user-created break.
func (d *DB) AddCustomBreak(userID string, b CustomBreak) (*CustomBreak, error) {
	if err := validateDuration(b.DurationMinutes); err != nil {
		return nil, err
	}
	b.ID = uuid.NewString()
	b.UserID = userID
	b.Time = b.Time.UTC()
	b.Custom = true

	_, err := d.Exec(`
		INSERT INTO custom_breaks (id, user_id, start_time, duration_minutes, activity, reason, description, icon, custom)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
	`, b.ID, userID, b.Time, b.DurationMinutes, b.Activity, b.Reason, b.Description, b.Icon)
	if err != nil {
		return nil, fmt.Errorf("failed to add custom break: %w", err)
	}
	return &b, nil
}

// ListCustomBreaks returns the user's breaks ordered by start time.
func (d *DB) ListCustomBreaks(userID string) ([]CustomBreak, error) {
	rows, err := d.Query(`
		SELECT id, user_id, start_time, duration_minutes, activity,
			COALESCE(reason, ''), COALESCE(description, ''), COALESCE(icon, ''), custom
		FROM custom_breaks
		WHERE user_id = ?
		ORDER BY start_time, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom breaks: %w", err)
	}
	defer rows.Close()

	breaks := []CustomBreak{}
	for rows.Next() {
		var b CustomBreak
		if err := rows.Scan(&b.ID, &b.UserID, &b.Time, &b.DurationMinutes, &b.Activity,
			&b.Reason, &b.Description, &b.Icon, &b.Custom); err != nil {
			return nil, fmt.Errorf("failed to scan custom break: %w", err)
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}

func (d *DB) DeleteCustomBreak(userID, id string) error {
	result, err := d.Exec(`DELETE FROM custom_breaks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom break: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrBreakNotFound
	}
	return nil
}
