package hoard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"hoard/internal/database/sqlc"
	"hoard/internal/fs"
)

// Upload receives r into a temporary file below the working directory and
// imports it as name under parent. The temporary file is removed whether
// or not the import succeeds.
func (t *Tree) Upload(ctx context.Context, parent *sqlc.Directory, name string, r io.Reader, force bool) (*sqlc.File, error) {
	const op = "upload"
	if err := fs.ValidName(name); err != nil {
		return nil, entityError(EntityFile, op, name, err)
	}
	remaining, err := t.RemainingCapacity(ctx)
	if err != nil {
		return nil, entityError(EntityFile, op, name, err)
	}

	target, err := fs.NewTempTarget(t.env.WorkingDir)
	if err != nil {
		return nil, entityError(EntityFile, op, name, err)
	}
	defer func() {
		if err := target.Close(); err != nil {
			t.env.Logger.Warn("removing upload failed", "path", target.Path(), "error", err)
		}
	}()

	received, err := target.Receive(ctx, r, remaining)
	if errors.Is(err, fs.ErrLimitExceeded) {
		return nil, entityError(EntityFile, op, name, fmt.Errorf("%w: %d bytes remaining", ErrQuotaExceeded, remaining))
	}
	if err != nil {
		return nil, entityError(EntityFile, op, name, err)
	}
	t.env.Logger.Debug("upload received", "repository", t.repo.ID, "name", name, "size", received)

	return t.ImportFile(ctx, parent, name, target.Path(), force)
}
