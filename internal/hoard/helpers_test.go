package hoard_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hoard/internal/database"
	"hoard/internal/database/sqlc"
	"hoard/internal/hoard"
	"hoard/internal/testutil"
)

type testEnv struct {
	db    *database.DB
	env   hoard.Env
	clock *testutil.StubClock
	ids   *testutil.StubIDGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	clock := testutil.FixedClock()
	ids := testutil.NewStubIDGenerator()
	return &testEnv{
		db: testutil.NewTestDatabase(t),
		env: hoard.Env{
			WorkingDir:  filepath.Join(base, "work"),
			StorageRoot: filepath.Join(base, "storage"),
			Clock:       clock,
			IDs:         ids,
			Logger:      hoard.NewNopLogger(),
		},
		clock: clock,
		ids:   ids,
	}
}

// newTree provisions user and a repository of capacity bytes on the
// autocommit queries.
func (e *testEnv) newTree(t *testing.T, userName string, capacity int64) *hoard.Tree {
	t.Helper()
	ctx := context.Background()
	user, err := hoard.EnsureUser(ctx, e.db.Queries(), e.env, userName)
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	tree, err := hoard.CreateRepository(ctx, e.db.Queries(), e.env, user, capacity)
	if err != nil {
		t.Fatalf("CreateRepository() error = %v", err)
	}
	return tree
}

// reopen binds the repository of tree to q.
func (e *testEnv) reopen(t *testing.T, tree *hoard.Tree, q sqlc.Querier) *hoard.Tree {
	t.Helper()
	user := tree.User()
	reopened, err := hoard.OpenRepository(context.Background(), q, e.env, &user)
	if err != nil {
		t.Fatalf("OpenRepository() error = %v", err)
	}
	return reopened
}

func mustCreateDirectory(t *testing.T, tree *hoard.Tree, parent *sqlc.Directory, name string) *sqlc.Directory {
	t.Helper()
	d, err := tree.CreateDirectory(context.Background(), parent, name, false)
	if err != nil {
		t.Fatalf("CreateDirectory(%q) error = %v", name, err)
	}
	return d
}

func mustCreateFile(t *testing.T, tree *hoard.Tree, parent *sqlc.Directory, name, content string) *sqlc.File {
	t.Helper()
	f, err := tree.CreateFile(context.Background(), parent, name, strings.NewReader(content), false)
	if err != nil {
		t.Fatalf("CreateFile(%q) error = %v", name, err)
	}
	return f
}

func mustDirectoryByPath(t *testing.T, tree *hoard.Tree, p string) *sqlc.Directory {
	t.Helper()
	d, err := tree.DirectoryByPath(context.Background(), p)
	if err != nil {
		t.Fatalf("DirectoryByPath(%q) error = %v", p, err)
	}
	if d == nil {
		t.Fatalf("DirectoryByPath(%q) = nil, want a directory", p)
	}
	return d
}

func mustFileByPath(t *testing.T, tree *hoard.Tree, p string) *sqlc.File {
	t.Helper()
	f, err := tree.FileByPath(context.Background(), p)
	if err != nil {
		t.Fatalf("FileByPath(%q) error = %v", p, err)
	}
	if f == nil {
		t.Fatalf("FileByPath(%q) = nil, want a file", p)
	}
	return f
}

// assertDirectoryOnDisk checks that the real path derived from the parent
// chain is where the directory actually is.
func assertDirectoryOnDisk(t *testing.T, tree *hoard.Tree, d *sqlc.Directory, want string) {
	t.Helper()
	got, err := tree.DirectoryRealPath(context.Background(), d)
	if err != nil {
		t.Fatalf("DirectoryRealPath() error = %v", err)
	}
	wantPath := filepath.Join(tree.Root(), filepath.FromSlash(want))
	if got != wantPath {
		t.Errorf("DirectoryRealPath() = %q, want %q", got, wantPath)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("stat %s: %v", got, err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", got)
	}
}

func assertFileOnDisk(t *testing.T, tree *hoard.Tree, f *sqlc.File, want, content string) {
	t.Helper()
	got, err := tree.FileRealPath(context.Background(), f)
	if err != nil {
		t.Fatalf("FileRealPath() error = %v", err)
	}
	wantPath := filepath.Join(tree.Root(), filepath.FromSlash(want))
	if got != wantPath {
		t.Errorf("FileRealPath() = %q, want %q", got, wantPath)
	}
	if data := testutil.ReadFile(t, got); data != content {
		t.Errorf("content of %s = %q, want %q", want, data, content)
	}
}

// assertSiblingsUnique verifies that no two directories and no two files
// of the repository share a name under the same parent.
func assertSiblingsUnique(t *testing.T, db *database.DB, tree *hoard.Tree) {
	t.Helper()
	ctx := context.Background()
	repoID := tree.Repository().ID

	dirs, err := db.Queries().ListDirectoriesByRepository(ctx, repoID)
	if err != nil {
		t.Fatalf("ListDirectoriesByRepository() error = %v", err)
	}
	seen := make(map[string]bool)
	for _, d := range dirs {
		key := siblingKey(d.ParentID, d.Name)
		if seen[key] {
			t.Errorf("duplicate directory %s", key)
		}
		seen[key] = true
	}

	files, err := db.Queries().ListFilesByRepository(ctx, repoID)
	if err != nil {
		t.Fatalf("ListFilesByRepository() error = %v", err)
	}
	seen = make(map[string]bool)
	for _, f := range files {
		key := siblingKey(f.ParentID, f.Name)
		if seen[key] {
			t.Errorf("duplicate file %s", key)
		}
		seen[key] = true
	}
}

func siblingKey(parent sql.NullInt64, name string) string {
	if !parent.Valid {
		return "/" + name
	}
	return fmt.Sprintf("%d/%s", parent.Int64, name)
}

func readAll(t *testing.T, tree *hoard.Tree, f *sqlc.File) string {
	t.Helper()
	r, err := tree.OpenFile(context.Background(), f)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	return string(data)
}

// failingQuerier fails selected row mutations so the filesystem side has to
// be compensated.
type failingQuerier struct {
	sqlc.Querier
	insertDirectory    error
	updateDirectory    error
	insertFile         error
	updateFileLocation error
	insertRepository   error
}

func (q *failingQuerier) InsertDirectory(ctx context.Context, arg sqlc.InsertDirectoryParams) (sqlc.Directory, error) {
	if q.insertDirectory != nil {
		return sqlc.Directory{}, q.insertDirectory
	}
	return q.Querier.InsertDirectory(ctx, arg)
}

func (q *failingQuerier) UpdateDirectoryName(ctx context.Context, arg sqlc.UpdateDirectoryNameParams) error {
	if q.updateDirectory != nil {
		return q.updateDirectory
	}
	return q.Querier.UpdateDirectoryName(ctx, arg)
}

func (q *failingQuerier) InsertFile(ctx context.Context, arg sqlc.InsertFileParams) (sqlc.File, error) {
	if q.insertFile != nil {
		return sqlc.File{}, q.insertFile
	}
	return q.Querier.InsertFile(ctx, arg)
}

func (q *failingQuerier) UpdateFileLocation(ctx context.Context, arg sqlc.UpdateFileLocationParams) error {
	if q.updateFileLocation != nil {
		return q.updateFileLocation
	}
	return q.Querier.UpdateFileLocation(ctx, arg)
}

func (q *failingQuerier) InsertRepository(ctx context.Context, arg sqlc.InsertRepositoryParams) (sqlc.Repository, error) {
	if q.insertRepository != nil {
		return sqlc.Repository{}, q.insertRepository
	}
	return q.Querier.InsertRepository(ctx, arg)
}
