package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const settingSpeed = "speed"

// Speed returns the persisted global speed, or fallback when none was stored.
func (s *Store) Speed(ctx context.Context, fallback int) (int, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingSpeed).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("read speed: %w", err)
	}
	wpm, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return wpm, nil
}

// SetSpeed persists the global speed so it survives daemon restarts.
func (s *Store) SetSpeed(ctx context.Context, wpm int) error {
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		settingSpeed,
		strconv.Itoa(wpm),
		nowString(),
	); err != nil {
		return fmt.Errorf("store speed: %w", err)
	}
	return nil
}
