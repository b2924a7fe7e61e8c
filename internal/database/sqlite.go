package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hoard/internal/database/migrations"
	"hoard/internal/database/sqlc"

	"github.com/mattn/go-sqlite3"
)

// Operation statuses recorded in the operations table.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// DB is the SQLite store holding repositories, their trees and the
// operation log.
type DB struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
}

// Open opens the SQLite database at path. path can be a file path or
// ":memory:" for an in-memory database.
func Open(path string) (*DB, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &DB{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
	}, nil
}

// NewDBFromConn wraps an existing connection. The caller is responsible
// for having configured it with OpenConnection.
func NewDBFromConn(db *sql.DB) *DB {
	return &DB{
		db:      db,
		queries: sqlc.New(db),
	}
}

// OpenConnection opens and configures a SQLite connection.
//
// The pool is limited to a single connection: an in-memory database only
// lives as long as its connection, and SQLite serializes writers anyway.
// Callers must not use the DB directly while a Session is open on the
// same goroutine.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Begin opens a Session. Row mutations made through the session's
// queries are visible inside it and discarded unless Commit is called.
func (d *DB) Begin(ctx context.Context) (*Session, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return &Session{
		tx:      tx,
		queries: d.queries.WithTx(tx),
	}, nil
}

// Queries returns the non-transactional query set. Reads only.
func (d *DB) Queries() *sqlc.Queries {
	return d.queries
}

// Operation log

func (d *DB) CreateOperation(ctx context.Context, operation, parameters string, startedAt time.Time) (*sqlc.Operation, error) {
	op, err := d.queries.InsertOperation(ctx, sqlc.InsertOperationParams{
		StartedAt:  startedAt,
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("inserting operation: %w", err)
	}
	return &op, nil
}

func (d *DB) FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error {
	err := d.queries.UpdateOperationFinished(ctx, sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: finishedAt, Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation %d: %w", id, err)
	}
	return nil
}

// ListOperations returns the most recent operations, newest first.
func (d *DB) ListOperations(ctx context.Context, limit int) ([]*sqlc.Operation, error) {
	ops, err := d.queries.ListOperations(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	result := make([]*sqlc.Operation, len(ops))
	for i := range ops {
		result[i] = &ops[i]
	}
	return result, nil
}

func (d *DB) MaxOperationID(ctx context.Context) (int64, error) {
	id, err := d.queries.GetMaxOperationID(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting max operation id: %w", err)
	}
	return id, nil
}

// Path returns the path the database was opened from ("" for wrapped
// connections).
func (d *DB) Path() string {
	return d.path
}

// Migrate brings the schema up to the latest embedded migration.
func (d *DB) Migrate() error {
	return migrations.MigrateUp(d.db)
}

// CheckMigrations reports whether the schema is at the latest version.
func (d *DB) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(d.db)
}

// SchemaStatus reports the applied and the latest schema version.
func (d *DB) SchemaStatus() (migrations.Status, error) {
	return migrations.ReadStatus(d.db)
}

// BackupTo writes a consistent copy of the database to destPath.
// destPath must not exist.
func (d *DB) BackupTo(ctx context.Context, destPath string) error {
	if destPath == "" {
		return errors.New("backing up database: empty destination")
	}
	if _, err := d.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
