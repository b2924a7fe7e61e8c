package hoard

import (
	"context"
	"database/sql"
	"fmt"
	iofs "io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// SizeMismatch is a file whose recorded size differs from the bytes on
// disk.
type SizeMismatch struct {
	Path     string `json:"path"`
	Recorded int64  `json:"recorded"`
	Actual   int64  `json:"actual"`
}

// ReconcileReport lists the differences between the rows of a repository
// and its directory on disk. Paths are logical and sorted.
type ReconcileReport struct {
	// Orphans exist on disk without a row, typically left behind when a
	// session failed to commit after the filesystem was changed.
	Orphans []string `json:"orphans"`
	// Missing have a row but nothing (or the wrong kind of object) on disk.
	Missing        []string       `json:"missing"`
	SizeMismatches []SizeMismatch `json:"size_mismatches"`
}

// Clean reports whether rows and disk agree.
func (r *ReconcileReport) Clean() bool {
	return len(r.Orphans) == 0 && len(r.Missing) == 0 && len(r.SizeMismatches) == 0
}

// Reconcile compares every row of the repository with the repository
// directory. It only reads; entries matched by the ignore patterns, and
// in-flight temporary files, are skipped.
func (t *Tree) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	dirs, files, err := t.expectedPaths(ctx)
	if err != nil {
		return nil, entityError(EntityRepository, "reconcile", t.user.Name, err)
	}

	report := &ReconcileReport{}
	seen := make(map[string]bool, len(dirs)+len(files))
	err = filepath.WalkDir(t.root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == t.root {
			return nil
		}

		rel := t.relativeTo(p)
		if t.env.Ignore.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !dirs[rel] {
				report.Orphans = append(report.Orphans, rel)
				return filepath.SkipDir
			}
			seen[rel] = true
			return nil
		}

		recorded, ok := files[rel]
		if !ok {
			report.Orphans = append(report.Orphans, rel)
			return nil
		}
		seen[rel] = true
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() != recorded {
			report.SizeMismatches = append(report.SizeMismatches, SizeMismatch{
				Path:     rel,
				Recorded: recorded,
				Actual:   info.Size(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, entityError(EntityRepository, "reconcile", t.user.Name, fmt.Errorf("walking repository: %w", err))
	}

	for rel := range dirs {
		if !seen[rel] {
			report.Missing = append(report.Missing, rel)
		}
	}
	for rel := range files {
		if !seen[rel] {
			report.Missing = append(report.Missing, rel)
		}
	}

	slices.Sort(report.Orphans)
	slices.Sort(report.Missing)
	slices.SortFunc(report.SizeMismatches, func(a, b SizeMismatch) int {
		return strings.Compare(a.Path, b.Path)
	})

	t.env.Logger.Info("repository reconciled", "repository", t.repo.ID,
		"orphans", len(report.Orphans), "missing", len(report.Missing), "size_mismatches", len(report.SizeMismatches))
	return report, nil
}

// expectedPaths loads every row of the repository once and derives the
// logical paths in memory.
func (t *Tree) expectedPaths(ctx context.Context) (map[string]bool, map[string]int64, error) {
	dirRows, err := t.q.ListDirectoriesByRepository(ctx, t.repo.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing directories: %w", err)
	}
	fileRows, err := t.q.ListFilesByRepository(ctx, t.repo.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing files: %w", err)
	}

	byID := make(map[int64]int, len(dirRows))
	for i, d := range dirRows {
		byID[d.ID] = i
	}
	resolved := make(map[int64]string, len(dirRows))

	var resolve func(id sql.NullInt64, depth int) (string, error)
	resolve = func(id sql.NullInt64, depth int) (string, error) {
		if !id.Valid {
			return "", nil
		}
		if p, ok := resolved[id.Int64]; ok {
			return p, nil
		}
		if depth > maxDepth {
			return "", fmt.Errorf("directory %d: parent chain deeper than %d", id.Int64, maxDepth)
		}
		i, ok := byID[id.Int64]
		if !ok {
			return "", fmt.Errorf("directory %d: %w", id.Int64, ErrNotFound)
		}
		parent, err := resolve(dirRows[i].ParentID, depth+1)
		if err != nil {
			return "", err
		}
		p := path.Join(parent, dirRows[i].Name)
		resolved[id.Int64] = p
		return p, nil
	}

	dirs := make(map[string]bool, len(dirRows))
	for _, d := range dirRows {
		p, err := resolve(sql.NullInt64{Int64: d.ID, Valid: true}, 0)
		if err != nil {
			return nil, nil, err
		}
		dirs[p] = true
	}

	files := make(map[string]int64, len(fileRows))
	for _, f := range fileRows {
		parent, err := resolve(f.ParentID, 0)
		if err != nil {
			return nil, nil, err
		}
		files[path.Join(parent, f.Name)] = f.Size
	}
	return dirs, files, nil
}
