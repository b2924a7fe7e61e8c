package database

import (
	"database/sql"
	"errors"
	"fmt"

	"hoard/internal/database/sqlc"
)

// Session is the transaction boundary around one tree mutation. The core
// only issues queries through it; the caller decides to Commit or
// Rollback.
type Session struct {
	tx      *sql.Tx
	queries *sqlc.Queries
	done    bool
}

// Queries returns the query set bound to the session's transaction.
func (s *Session) Queries() *sqlc.Queries {
	return s.queries
}

// Commit makes the session's row mutations durable.
func (s *Session) Commit() error {
	if s.done {
		return errors.New("committing session: already finished")
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// Rollback discards the session's row mutations. It is a no-op once the
// session has been committed or rolled back, so it can always be deferred.
func (s *Session) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back session: %w", err)
	}
	return nil
}
