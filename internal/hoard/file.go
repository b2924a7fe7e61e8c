package hoard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hoard/internal/database/sqlc"
	"hoard/internal/fs"
)

// CreateFile writes r to name under parent (nil is the repository root).
// The recorded size is the number of bytes actually written. A stream
// larger than the remaining capacity fails with ErrQuotaExceeded and
// leaves nothing behind.
func (t *Tree) CreateFile(ctx context.Context, parent *sqlc.Directory, name string, r io.Reader, force bool) (*sqlc.File, error) {
	const op = "create"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := fs.ValidName(name); err != nil {
		return nil, entityError(EntityFile, op, name, err)
	}

	parentPath, err := t.parentRealPath(ctx, parent)
	if err != nil {
		return nil, entityError(EntityFile, op, name, err)
	}
	if force {
		name, err = fs.NextFreeName(parentPath, name, false)
		if err != nil {
			return nil, entityError(EntityFile, op, name, err)
		}
	} else if taken, err := t.nameTaken(ctx, parent, name); err != nil {
		return nil, entityError(EntityFile, op, name, err)
	} else if taken {
		return nil, entityError(EntityFile, op, t.relativeTo(filepath.Join(parentPath, name)), ErrAlreadyExists)
	}

	realPath := filepath.Join(parentPath, name)
	rel := t.relativeTo(realPath)
	remaining, err := t.RemainingCapacity(ctx)
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}

	gw, err := t.gateway(realPath)
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}
	size, err := gw.WriteFile(ctx, fs.LimitReader(r, remaining), false)
	if errors.Is(err, fs.ErrLimitExceeded) {
		return nil, entityError(EntityFile, op, rel, fmt.Errorf("%w: %d bytes remaining", ErrQuotaExceeded, remaining))
	}
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}

	now := t.env.Clock.Now()
	row, err := t.q.InsertFile(ctx, sqlc.InsertFileParams{
		RepositoryID: t.repo.ID,
		ParentID:     parentID(parent),
		Name:         name,
		Size:         size,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.compensate("remove written file", rel, gw.Remove(false))
		return nil, entityError(EntityFile, op, rel, rowError(err))
	}

	t.env.Logger.Debug("file created", "repository", t.repo.ID, "path", rel, "size", size)
	return &row, nil
}

// ImportFile moves a completed upload at tempPath into the tree. The temp
// file is only read; its owner removes it.
func (t *Tree) ImportFile(ctx context.Context, parent *sqlc.Directory, name, tempPath string, force bool) (*sqlc.File, error) {
	f, err := os.Open(tempPath)
	if err != nil {
		return nil, entityError(EntityFile, "import", name, fmt.Errorf("opening upload: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, entityError(EntityFile, "import", name, fmt.Errorf("reading upload: %w", err))
	}
	remaining, err := t.RemainingCapacity(ctx)
	if err != nil {
		return nil, entityError(EntityFile, "import", name, err)
	}
	if info.Size() > remaining {
		return nil, entityError(EntityFile, "import", name,
			fmt.Errorf("%w: upload of %d bytes, %d remaining", ErrQuotaExceeded, info.Size(), remaining))
	}

	return t.CreateFile(ctx, parent, name, f, force)
}

// OpenFile opens the content of f for reading.
func (t *Tree) OpenFile(ctx context.Context, f *sqlc.File) (io.ReadCloser, error) {
	gw, rel, err := t.fileGateway(ctx, f)
	if err != nil {
		return nil, entityError(EntityFile, "open", rel, err)
	}
	r, err := gw.Open()
	if err != nil {
		return nil, entityError(EntityFile, "open", rel, err)
	}
	return r, nil
}

// RenameFile renames f in place. On success f carries the final name.
func (t *Tree) RenameFile(ctx context.Context, f *sqlc.File, name string, force bool) error {
	const op = "rename"
	gw, rel, err := t.fileGateway(ctx, f)
	if err != nil {
		return entityError(EntityFile, op, rel, err)
	}

	renamed, err := gw.Rename(ctx, name, fs.Options{Force: force})
	if err != nil {
		return entityError(EntityFile, op, rel, err)
	}

	now := t.env.Clock.Now()
	err = t.q.UpdateFileName(ctx, sqlc.UpdateFileNameParams{
		Name:      renamed.Name(),
		UpdatedAt: now,
		ID:        f.ID,
	})
	if err != nil {
		_, undoErr := renamed.Rename(context.WithoutCancel(ctx), gw.Name(), fs.Options{})
		t.compensate("rename file back", rel, undoErr)
		return entityError(EntityFile, op, rel, rowError(err))
	}

	t.env.Logger.Debug("file renamed", "repository", t.repo.ID, "path", rel, "name", renamed.Name())
	f.Name = renamed.Name()
	f.UpdatedAt = now
	return nil
}

// MoveFile moves f into target (nil is the repository root).
func (t *Tree) MoveFile(ctx context.Context, f *sqlc.File, target *sqlc.Directory, force bool) error {
	const op = "move"
	gw, rel, err := t.fileGateway(ctx, f)
	if err != nil {
		return entityError(EntityFile, op, rel, err)
	}
	targetPath, err := t.parentRealPath(ctx, target)
	if err != nil {
		return entityError(EntityFile, op, rel, err)
	}

	moved, err := gw.Move(ctx, targetPath, fs.Options{Force: force})
	if err != nil {
		return entityError(EntityFile, op, rel, err)
	}

	now := t.env.Clock.Now()
	err = t.q.UpdateFileLocation(ctx, sqlc.UpdateFileLocationParams{
		ParentID:  parentID(target),
		Name:      moved.Name(),
		UpdatedAt: now,
		ID:        f.ID,
	})
	if err != nil {
		_, undoErr := moved.Move(context.WithoutCancel(ctx), filepath.Dir(gw.Path()), fs.Options{NewName: gw.Name()})
		t.compensate("move file back", rel, undoErr)
		return entityError(EntityFile, op, rel, rowError(err))
	}

	t.env.Logger.Debug("file moved", "repository", t.repo.ID, "from", rel, "to", moved.RelativePath())
	f.ParentID = parentID(target)
	f.Name = moved.Name()
	f.UpdatedAt = now
	return nil
}

// CopyFile copies f into target (nil is the repository root) and returns
// the new row. The copy counts against the repository capacity.
func (t *Tree) CopyFile(ctx context.Context, f *sqlc.File, target *sqlc.Directory, force bool) (*sqlc.File, error) {
	const op = "copy"
	gw, rel, err := t.fileGateway(ctx, f)
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}
	targetPath, err := t.parentRealPath(ctx, target)
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}
	size, err := gw.Size()
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}
	if err := t.checkCapacity(ctx, size); err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}

	copied, err := gw.Copy(ctx, targetPath, fs.Options{Force: force})
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}

	row, err := t.cloneFile(ctx, f, target, copied)
	if err != nil {
		t.compensate("remove copied file", copied.RelativePath(), copied.Remove(false))
		return nil, entityError(EntityFile, op, rel, rowError(err))
	}

	t.env.Logger.Debug("file copied", "repository", t.repo.ID, "from", rel, "to", copied.RelativePath())
	return row, nil
}

// cloneFile inserts a row for an already copied object. The size is taken
// from the copy on disk.
func (t *Tree) cloneFile(ctx context.Context, src *sqlc.File, parent *sqlc.Directory, copied *fs.Gateway) (*sqlc.File, error) {
	size, err := copied.Size()
	if err != nil {
		return nil, err
	}

	now := t.env.Clock.Now()
	row, err := t.q.InsertFile(ctx, sqlc.InsertFileParams{
		RepositoryID: t.repo.ID,
		ParentID:     parentID(parent),
		Name:         copied.Name(),
		Size:         size,
		IsPublic:     src.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("inserting file copy: %w", err)
	}
	return &row, nil
}

// RemoveFile deletes the physical file, then its row. When the physical
// removal fails the row is kept.
func (t *Tree) RemoveFile(ctx context.Context, f *sqlc.File) error {
	const op = "remove"
	gw, rel, err := t.fileGateway(ctx, f)
	if err != nil {
		return entityError(EntityFile, op, rel, err)
	}

	if err := gw.Remove(false); err != nil {
		return entityError(EntityFile, op, rel, err)
	}
	if err := t.q.DeleteFile(ctx, f.ID); err != nil {
		return entityError(EntityFile, op, rel, err)
	}

	t.env.Logger.Debug("file removed", "repository", t.repo.ID, "path", rel)
	return nil
}

func (t *Tree) fileGateway(ctx context.Context, f *sqlc.File) (*fs.Gateway, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if f == nil {
		return nil, "", fmt.Errorf("file: %w", ErrNotFound)
	}
	if err := t.owns(f.RepositoryID); err != nil {
		return nil, f.Name, err
	}

	rel, err := t.RelativeFilePath(ctx, f)
	if err != nil {
		return nil, f.Name, err
	}
	if rel == "" {
		return nil, f.Name, fmt.Errorf("file %d: %w", f.ID, ErrNotFound)
	}
	gw, err := t.gateway(filepath.Join(t.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, rel, err
	}
	return gw, rel, nil
}

// checkCapacity fails with ErrQuotaExceeded when a copy of size bytes
// would exceed the remaining capacity.
func (t *Tree) checkCapacity(ctx context.Context, size int64) error {
	remaining, err := t.RemainingCapacity(ctx)
	if err != nil {
		return err
	}
	if size > remaining {
		return fmt.Errorf("%w: copy of %d bytes, %d remaining", ErrQuotaExceeded, size, remaining)
	}
	return nil
}
