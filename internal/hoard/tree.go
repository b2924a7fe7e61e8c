package hoard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"hoard/internal/database/sqlc"
	"hoard/internal/fs"
)

// maxDepth bounds parent walks so a corrupted parent chain cannot loop.
const maxDepth = 4096

// Env carries the configuration values and collaborators the core reads.
type Env struct {
	// WorkingDir holds the upload cache.
	WorkingDir string
	// StorageRoot is the isolated root of every repository.
	StorageRoot string

	// Ignore names physical entries Reconcile does not report.
	Ignore *fs.IgnoreMatcher

	Clock  Clock
	IDs    IDGenerator
	Logger Logger
}

func (e Env) withDefaults() Env {
	if e.Clock == nil {
		e.Clock = RealClock{}
	}
	if e.IDs == nil {
		e.IDs = UUIDGenerator{}
	}
	if e.Logger == nil {
		e.Logger = NewNopLogger()
	}
	if e.Ignore == nil {
		e.Ignore = fs.NewIgnoreMatcher(nil)
	}
	return e
}

// Tree is the directory and file tree of one repository, bound to the
// queries of one session. Every mutation changes the filesystem first and
// the rows second; the caller commits or rolls back the session.
type Tree struct {
	q    sqlc.Querier
	env  Env
	user sqlc.User
	repo sqlc.Repository
	root string
}

func newTree(q sqlc.Querier, env Env, user sqlc.User, repo sqlc.Repository) *Tree {
	return &Tree{
		q:    q,
		env:  env,
		user: user,
		repo: repo,
		root: RepositoryPath(env.StorageRoot, user),
	}
}

// Repository returns the repository row the tree was opened with.
func (t *Tree) Repository() sqlc.Repository { return t.repo }

// User returns the owner of the repository.
func (t *Tree) User() sqlc.User { return t.user }

// Root is the real path of the repository directory.
func (t *Tree) Root() string { return t.root }

// RelativeDirectoryPath walks the parent chain of d. A directory whose row
// no longer exists yields "" and no error.
func (t *Tree) RelativeDirectoryPath(ctx context.Context, d *sqlc.Directory) (string, error) {
	if d == nil {
		return "", nil
	}

	var names []string
	id := sql.NullInt64{Int64: d.ID, Valid: true}
	for depth := 0; id.Valid; depth++ {
		if depth > maxDepth {
			return "", fmt.Errorf("directory %d: parent chain deeper than %d", d.ID, maxDepth)
		}
		row, err := t.q.GetDirectory(ctx, id.Int64)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("getting directory %d: %w", id.Int64, err)
		}
		names = append(names, row.Name)
		id = row.ParentID
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return path.Join(names...), nil
}

// DirectoryRealPath is the on-disk location of d, or "" when d was deleted.
func (t *Tree) DirectoryRealPath(ctx context.Context, d *sqlc.Directory) (string, error) {
	if d == nil {
		return t.root, nil
	}
	rel, err := t.RelativeDirectoryPath(ctx, d)
	if err != nil || rel == "" {
		return "", err
	}
	return filepath.Join(t.root, filepath.FromSlash(rel)), nil
}

// RelativeFilePath is the logical path of f, or "" when f was deleted.
func (t *Tree) RelativeFilePath(ctx context.Context, f *sqlc.File) (string, error) {
	if f == nil {
		return "", nil
	}
	row, err := t.q.GetFile(ctx, f.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting file %d: %w", f.ID, err)
	}
	if !row.ParentID.Valid {
		return row.Name, nil
	}

	parent, err := t.q.GetDirectory(ctx, row.ParentID.Int64)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting directory %d: %w", row.ParentID.Int64, err)
	}
	dir, err := t.RelativeDirectoryPath(ctx, &parent)
	if err != nil || dir == "" {
		return "", err
	}
	return path.Join(dir, row.Name), nil
}

// FileRealPath is the on-disk location of f, or "" when f was deleted.
func (t *Tree) FileRealPath(ctx context.Context, f *sqlc.File) (string, error) {
	rel, err := t.RelativeFilePath(ctx, f)
	if err != nil || rel == "" {
		return "", err
	}
	return filepath.Join(t.root, filepath.FromSlash(rel)), nil
}

// DirectoryByPath resolves a logical path top-down. It returns nil without
// error when a segment is missing, and also for the root ("" or "/").
func (t *Tree) DirectoryByPath(ctx context.Context, p string) (*sqlc.Directory, error) {
	normalized, err := fs.Normalize(p)
	if err != nil {
		return nil, err
	}
	dir, _, err := t.lookupDirectory(ctx, fs.Segments(normalized))
	return dir, err
}

// FileByPath resolves a logical file path. It returns nil without error
// when any segment is missing.
func (t *Tree) FileByPath(ctx context.Context, p string) (*sqlc.File, error) {
	normalized, err := fs.Normalize(p)
	if err != nil {
		return nil, err
	}
	segments := fs.Segments(normalized)
	if len(segments) == 0 {
		return nil, nil
	}

	parent, found, err := t.lookupDirectory(ctx, segments[:len(segments)-1])
	if err != nil || !found {
		return nil, err
	}
	return t.childFile(ctx, parent, segments[len(segments)-1])
}

// lookupDirectory walks segments from the root. found is false when a
// segment is missing; the root itself is (nil, true).
func (t *Tree) lookupDirectory(ctx context.Context, segments []string) (*sqlc.Directory, bool, error) {
	var current *sqlc.Directory
	for _, name := range segments {
		next, err := t.childDirectory(ctx, current, name)
		if err != nil {
			return nil, false, err
		}
		if next == nil {
			return nil, false, nil
		}
		current = next
	}
	return current, true, nil
}

func (t *Tree) childDirectory(ctx context.Context, parent *sqlc.Directory, name string) (*sqlc.Directory, error) {
	var (
		row sqlc.Directory
		err error
	)
	if parent == nil {
		row, err = t.q.GetRootDirectoryByName(ctx, sqlc.GetRootDirectoryByNameParams{
			RepositoryID: t.repo.ID,
			Name:         name,
		})
	} else {
		row, err = t.q.GetChildDirectoryByName(ctx, sqlc.GetChildDirectoryByNameParams{
			RepositoryID: t.repo.ID,
			ParentID:     parentID(parent),
			Name:         name,
		})
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up directory %q: %w", name, err)
	}
	return &row, nil
}

func (t *Tree) childFile(ctx context.Context, parent *sqlc.Directory, name string) (*sqlc.File, error) {
	var (
		row sqlc.File
		err error
	)
	if parent == nil {
		row, err = t.q.GetRootFileByName(ctx, sqlc.GetRootFileByNameParams{
			RepositoryID: t.repo.ID,
			Name:         name,
		})
	} else {
		row, err = t.q.GetChildFileByName(ctx, sqlc.GetChildFileByNameParams{
			RepositoryID: t.repo.ID,
			ParentID:     parentID(parent),
			Name:         name,
		})
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up file %q: %w", name, err)
	}
	return &row, nil
}

// listDirectories returns the children of parent, or the root level.
func (t *Tree) listDirectories(ctx context.Context, parent *sqlc.Directory) ([]sqlc.Directory, error) {
	if parent == nil {
		return t.q.ListRootDirectories(ctx, t.repo.ID)
	}
	return t.q.ListChildDirectories(ctx, parentID(parent))
}

func (t *Tree) listFiles(ctx context.Context, parent *sqlc.Directory) ([]sqlc.File, error) {
	if parent == nil {
		return t.q.ListRootFiles(ctx, t.repo.ID)
	}
	return t.q.ListChildFiles(ctx, parentID(parent))
}

// nameTaken reports whether a directory or file row already uses name
// under parent.
func (t *Tree) nameTaken(ctx context.Context, parent *sqlc.Directory, name string) (bool, error) {
	d, err := t.childDirectory(ctx, parent, name)
	if err != nil || d != nil {
		return d != nil, err
	}
	f, err := t.childFile(ctx, parent, name)
	return f != nil, err
}

// parentRealPath resolves the directory a new child goes into. nil is the
// repository root.
func (t *Tree) parentRealPath(ctx context.Context, parent *sqlc.Directory) (string, error) {
	if parent == nil {
		return t.root, nil
	}
	if err := t.owns(parent.RepositoryID); err != nil {
		return "", err
	}
	p, err := t.DirectoryRealPath(ctx, parent)
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", fmt.Errorf("directory %d: %w", parent.ID, ErrNotFound)
	}
	return p, nil
}

// isWithin reports whether node is ancestor itself or one of its
// descendants.
func (t *Tree) isWithin(ctx context.Context, node, ancestor *sqlc.Directory) (bool, error) {
	if node == nil {
		return false, nil
	}
	id := sql.NullInt64{Int64: node.ID, Valid: true}
	for depth := 0; id.Valid; depth++ {
		if id.Int64 == ancestor.ID {
			return true, nil
		}
		if depth > maxDepth {
			return false, fmt.Errorf("directory %d: parent chain deeper than %d", node.ID, maxDepth)
		}
		row, err := t.q.GetDirectory(ctx, id.Int64)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("getting directory %d: %w", id.Int64, err)
		}
		id = row.ParentID
	}
	return false, nil
}

func (t *Tree) owns(repositoryID int64) error {
	if repositoryID != t.repo.ID {
		return fmt.Errorf("entity of repository %d: %w", repositoryID, ErrNotFound)
	}
	return nil
}

func (t *Tree) gateway(p string) (*fs.Gateway, error) {
	return fs.New(p, t.root)
}

// compensate logs the outcome of undoing a filesystem change after its row
// mutation failed.
func (t *Tree) compensate(action, p string, err error) {
	if err != nil {
		t.env.Logger.Error("compensation failed", "action", action, "path", p, "error", err)
		return
	}
	t.env.Logger.Warn("compensated", "action", action, "path", p)
}

func parentID(d *sqlc.Directory) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.ID, Valid: true}
}

// relativeTo turns a real path below the repository root into a logical
// path for error messages.
func (t *Tree) relativeTo(p string) string {
	rel, err := filepath.Rel(t.root, p)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
