package queue

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion tracks schema.sql. There are no migrations; a mismatched
// jobs.db has to be removed by hand.
const schemaVersion = 1

// ErrSchemaMismatch reports a jobs.db written by another schema version.
var ErrSchemaMismatch = errors.New("jobs schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var present int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&present); err != nil {
		return fmt.Errorf("inspect jobs db: %w", err)
	}
	if present == 0 {
		return s.createSchema(ctx)
	}

	var found int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&found); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if found != schemaVersion {
		return fmt.Errorf("%w: %s is at %d, ditd needs %d", ErrSchemaMismatch, s.path, found, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema.sql: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("stamp schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
