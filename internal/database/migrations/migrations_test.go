package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	tables := []string{
		"users", "repositories", "directories", "files",
		"directory_links", "file_links", "operations", "schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	err := CheckDBMigrationStatus(db)
	if !errors.Is(err, ErrNoSchema) {
		t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNoSchema", err)
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}

	status, err := ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if status.Current != status.Latest || status.Dirty {
		t.Errorf("ReadStatus() = %+v, want current == latest and clean", status)
	}
	if status.Latest != 1 {
		t.Errorf("ReadStatus().Latest = %d, want 1", status.Latest)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO directories (repository_id, name, created_at, updated_at)
		VALUES (42, 'docs', datetime('now'), datetime('now'))
	`)
	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_SiblingNamesUnique(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("Exec(%q) error = %v", query, err)
		}
	}
	mustExec(`INSERT INTO users (id, name, lower_name, created_at) VALUES ('u1', 'Alice', 'alice', datetime('now'))`)
	mustExec(`INSERT INTO repositories (id, user_id, capacity, created_at) VALUES (1, 'u1', 1000, datetime('now'))`)
	mustExec(`INSERT INTO directories (id, repository_id, name, created_at, updated_at) VALUES (1, 1, 'docs', datetime('now'), datetime('now'))`)

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{
			name:    "same root name",
			query:   `INSERT INTO directories (repository_id, name, created_at, updated_at) VALUES (1, 'docs', datetime('now'), datetime('now'))`,
			wantErr: true,
		},
		{
			name:    "same name below another parent",
			query:   `INSERT INTO directories (repository_id, parent_id, name, created_at, updated_at) VALUES (1, 1, 'docs', datetime('now'), datetime('now'))`,
			wantErr: false,
		},
		{
			name:    "file may share a directory name",
			query:   `INSERT INTO files (repository_id, name, size, created_at, updated_at) VALUES (1, 'docs', 0, datetime('now'), datetime('now'))`,
			wantErr: false,
		},
		{
			name:    "same root file name",
			query:   `INSERT INTO files (repository_id, name, size, created_at, updated_at) VALUES (1, 'docs', 0, datetime('now'), datetime('now'))`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("Exec() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_CascadeOnRepositoryDelete(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	stmts := []string{
		`INSERT INTO users (id, name, lower_name, created_at) VALUES ('u1', 'Alice', 'alice', datetime('now'))`,
		`INSERT INTO repositories (id, user_id, capacity, created_at) VALUES (1, 'u1', 1000, datetime('now'))`,
		`INSERT INTO directories (id, repository_id, name, created_at, updated_at) VALUES (1, 1, 'docs', datetime('now'), datetime('now'))`,
		`INSERT INTO files (id, repository_id, parent_id, name, size, created_at, updated_at) VALUES (1, 1, 1, 'a.txt', 3, datetime('now'), datetime('now'))`,
		`INSERT INTO file_links (file_id, url, created_at) VALUES (1, 'token', datetime('now'))`,
		`DELETE FROM repositories WHERE id = 1`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Exec(%q) error = %v", stmt, err)
		}
	}

	for _, table := range []string{"directories", "files", "file_links"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after repository delete, want 0", table, n)
		}
	}
}
