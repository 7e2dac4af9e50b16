package queue

import (
	"context"
	"database/sql"
)

// ExecForTest runs raw SQL against the store.
func (s *Store) ExecForTest(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}
