package hoard

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"hoard/internal/database/sqlc"
	"hoard/internal/fs"
)

// CreateDirectory creates name under parent (nil is the repository root).
// With force a taken name is replaced by the next free variant.
func (t *Tree) CreateDirectory(ctx context.Context, parent *sqlc.Directory, name string, force bool) (*sqlc.Directory, error) {
	const op = "create"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := fs.ValidName(name); err != nil {
		return nil, entityError(EntityDirectory, op, name, err)
	}

	parentPath, err := t.parentRealPath(ctx, parent)
	if err != nil {
		return nil, entityError(EntityDirectory, op, name, err)
	}
	if force {
		name, err = fs.NextFreeName(parentPath, name, true)
		if err != nil {
			return nil, entityError(EntityDirectory, op, name, err)
		}
	} else if taken, err := t.nameTaken(ctx, parent, name); err != nil {
		return nil, entityError(EntityDirectory, op, name, err)
	} else if taken {
		return nil, entityError(EntityDirectory, op, t.relativeTo(filepath.Join(parentPath, name)), ErrAlreadyExists)
	}

	realPath := filepath.Join(parentPath, name)
	rel := t.relativeTo(realPath)
	gw, err := t.gateway(realPath)
	if err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}
	if err := gw.MakeDirectory(false); err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}

	now := t.env.Clock.Now()
	row, err := t.q.InsertDirectory(ctx, sqlc.InsertDirectoryParams{
		RepositoryID: t.repo.ID,
		ParentID:     parentID(parent),
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.compensate("remove created directory", rel, gw.Remove(false))
		return nil, entityError(EntityDirectory, op, rel, rowError(err))
	}

	t.env.Logger.Debug("directory created", "repository", t.repo.ID, "path", rel)
	return &row, nil
}

// RenameDirectory renames d in place. On success d carries the final name,
// which differs from name when force picked a free variant.
func (t *Tree) RenameDirectory(ctx context.Context, d *sqlc.Directory, name string, force bool) error {
	const op = "rename"
	gw, rel, err := t.directoryGateway(ctx, d)
	if err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}

	renamed, err := gw.Rename(ctx, name, fs.Options{Force: force})
	if err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}

	now := t.env.Clock.Now()
	err = t.q.UpdateDirectoryName(ctx, sqlc.UpdateDirectoryNameParams{
		Name:      renamed.Name(),
		UpdatedAt: now,
		ID:        d.ID,
	})
	if err != nil {
		_, undoErr := renamed.Rename(context.WithoutCancel(ctx), gw.Name(), fs.Options{})
		t.compensate("rename directory back", rel, undoErr)
		return entityError(EntityDirectory, op, rel, rowError(err))
	}

	t.env.Logger.Debug("directory renamed", "repository", t.repo.ID, "path", rel, "name", renamed.Name())
	d.Name = renamed.Name()
	d.UpdatedAt = now
	return nil
}

// MoveDirectory moves d below target (nil is the repository root). Moving
// a directory into itself or one of its descendants is ErrInvalidPath.
func (t *Tree) MoveDirectory(ctx context.Context, d, target *sqlc.Directory, force bool) error {
	const op = "move"
	gw, rel, err := t.directoryGateway(ctx, d)
	if err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}
	if target != nil {
		within, err := t.isWithin(ctx, target, d)
		if err != nil {
			return entityError(EntityDirectory, op, rel, err)
		}
		if within {
			return entityError(EntityDirectory, op, rel, fmt.Errorf("into itself: %w", ErrInvalidPath))
		}
	}
	targetPath, err := t.parentRealPath(ctx, target)
	if err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}

	moved, err := gw.Move(ctx, targetPath, fs.Options{Force: force})
	if err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}

	now := t.env.Clock.Now()
	err = t.q.UpdateDirectoryLocation(ctx, sqlc.UpdateDirectoryLocationParams{
		ParentID:  parentID(target),
		Name:      moved.Name(),
		UpdatedAt: now,
		ID:        d.ID,
	})
	if err != nil {
		_, undoErr := moved.Move(context.WithoutCancel(ctx), filepath.Dir(gw.Path()), fs.Options{NewName: gw.Name()})
		t.compensate("move directory back", rel, undoErr)
		return entityError(EntityDirectory, op, rel, rowError(err))
	}

	t.env.Logger.Debug("directory moved", "repository", t.repo.ID, "from", rel, "to", moved.RelativePath())
	d.ParentID = parentID(target)
	d.Name = moved.Name()
	d.UpdatedAt = now
	return nil
}

// CopyDirectory copies d and its whole subtree below target (nil is the
// repository root) and returns the new top-level row. The bytes are copied
// once; the rows of the subtree are cloned over the copied objects.
// Physical entries without a row are neither copied nor charged.
func (t *Tree) CopyDirectory(ctx context.Context, d, target *sqlc.Directory, force bool) (*sqlc.Directory, error) {
	const op = "copy"
	gw, rel, err := t.directoryGateway(ctx, d)
	if err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}
	if target != nil {
		within, err := t.isWithin(ctx, target, d)
		if err != nil {
			return nil, entityError(EntityDirectory, op, rel, err)
		}
		if within {
			return nil, entityError(EntityDirectory, op, rel, fmt.Errorf("into itself: %w", ErrInvalidPath))
		}
	}
	targetPath, err := t.parentRealPath(ctx, target)
	if err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}
	tracked, size, err := t.trackedBelow(ctx, d, gw.Path())
	if err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}
	if err := t.checkCapacity(ctx, size); err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}

	copied, err := gw.Copy(ctx, targetPath, fs.Options{
		Force: force,
		Skip:  func(entry string) bool { return !tracked[entry] },
	})
	if err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}

	row, err := t.cloneDirectory(ctx, d, target, copied)
	if err != nil {
		t.compensate("remove copied directory", copied.RelativePath(), copied.Remove(false))
		return nil, entityError(EntityDirectory, op, rel, rowError(err))
	}

	t.env.Logger.Debug("directory copied", "repository", t.repo.ID, "from", rel, "to", copied.RelativePath())
	return row, nil
}

// trackedBelow collects the paths below d, relative to d, that have rows,
// and the on-disk size of the tracked files. realPath is where d lives.
func (t *Tree) trackedBelow(ctx context.Context, d *sqlc.Directory, realPath string) (map[string]bool, int64, error) {
	tracked := make(map[string]bool)
	var size int64

	var walk func(parent *sqlc.Directory, prefix string) error
	walk = func(parent *sqlc.Directory, prefix string) error {
		dirs, err := t.q.ListChildDirectories(ctx, parentID(parent))
		if err != nil {
			return fmt.Errorf("listing directories: %w", err)
		}
		for i := range dirs {
			rel := path.Join(prefix, dirs[i].Name)
			tracked[rel] = true
			if err := walk(&dirs[i], rel); err != nil {
				return err
			}
		}

		files, err := t.q.ListChildFiles(ctx, parentID(parent))
		if err != nil {
			return fmt.Errorf("listing files: %w", err)
		}
		for _, f := range files {
			rel := path.Join(prefix, f.Name)
			tracked[rel] = true
			gw, err := t.gateway(filepath.Join(realPath, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			n, err := gw.Size()
			if err != nil {
				return err
			}
			size += n
		}
		return nil
	}
	return tracked, size, walk(d, "")
}

// cloneDirectory inserts a row for the already copied object and recurses
// into the children with shallow copies.
func (t *Tree) cloneDirectory(ctx context.Context, src, parent *sqlc.Directory, copied *fs.Gateway) (*sqlc.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := t.env.Clock.Now()
	row, err := t.q.InsertDirectory(ctx, sqlc.InsertDirectoryParams{
		RepositoryID: t.repo.ID,
		ParentID:     parentID(parent),
		Name:         copied.Name(),
		IsPublic:     src.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("inserting directory copy: %w", err)
	}

	srcPath, err := t.DirectoryRealPath(ctx, src)
	if err != nil {
		return nil, err
	}

	dirs, err := t.q.ListChildDirectories(ctx, parentID(src))
	if err != nil {
		return nil, fmt.Errorf("listing directories: %w", err)
	}
	for i := range dirs {
		child := &dirs[i]
		planned, err := t.shallowCopy(ctx, filepath.Join(srcPath, child.Name), copied.Path())
		if err != nil {
			return nil, err
		}
		if _, err := t.cloneDirectory(ctx, child, &row, planned); err != nil {
			return nil, err
		}
	}

	files, err := t.q.ListChildFiles(ctx, parentID(src))
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	for i := range files {
		child := &files[i]
		planned, err := t.shallowCopy(ctx, filepath.Join(srcPath, child.Name), copied.Path())
		if err != nil {
			return nil, err
		}
		if _, err := t.cloneFile(ctx, child, &row, planned); err != nil {
			return nil, err
		}
	}

	return &row, nil
}

func (t *Tree) shallowCopy(ctx context.Context, src, targetDir string) (*fs.Gateway, error) {
	gw, err := t.gateway(src)
	if err != nil {
		return nil, err
	}
	return gw.Copy(ctx, targetDir, fs.Options{Shallow: true})
}

// RemoveDirectory removes d bottom-up: child directories and files first,
// then the physical directory, then its row. When the physical removal
// fails the row is kept.
func (t *Tree) RemoveDirectory(ctx context.Context, d *sqlc.Directory) error {
	const op = "remove"
	gw, rel, err := t.directoryGateway(ctx, d)
	if err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}

	if err := t.removeChildren(ctx, d); err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}
	if err := gw.Remove(false); err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}
	if err := t.q.DeleteDirectory(ctx, d.ID); err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}

	t.env.Logger.Debug("directory removed", "repository", t.repo.ID, "path", rel)
	return nil
}

// removeChildren removes everything below parent (nil is the root level).
func (t *Tree) removeChildren(ctx context.Context, parent *sqlc.Directory) error {
	dirs, err := t.listDirectories(ctx, parent)
	if err != nil {
		return fmt.Errorf("listing directories: %w", err)
	}
	for i := range dirs {
		if err := t.RemoveDirectory(ctx, &dirs[i]); err != nil {
			return err
		}
	}

	files, err := t.listFiles(ctx, parent)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	for i := range files {
		if err := t.RemoveFile(ctx, &files[i]); err != nil {
			return err
		}
	}
	return nil
}

// directoryGateway checks ctx and ownership, then binds a gateway to the
// current real path of d.
func (t *Tree) directoryGateway(ctx context.Context, d *sqlc.Directory) (*fs.Gateway, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if d == nil {
		return nil, "", fmt.Errorf("repository root: %w", ErrIsolation)
	}
	if err := t.owns(d.RepositoryID); err != nil {
		return nil, d.Name, err
	}

	rel, err := t.RelativeDirectoryPath(ctx, d)
	if err != nil {
		return nil, d.Name, err
	}
	if rel == "" {
		return nil, d.Name, fmt.Errorf("directory %d: %w", d.ID, ErrNotFound)
	}
	gw, err := t.gateway(filepath.Join(t.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, rel, err
	}
	return gw, rel, nil
}
