package hoard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hoard/internal/database/sqlc"
)

// LinkTarget is what a share token resolves to. Exactly one of Directory
// and File is set.
type LinkTarget struct {
	Directory *sqlc.Directory
	File      *sqlc.File
}

// DirectoryLink returns the share link of d, creating one if d has none.
// A shared directory is public.
func (t *Tree) DirectoryLink(ctx context.Context, d *sqlc.Directory) (*sqlc.DirectoryLink, error) {
	const op = "share"
	rel, err := t.liveDirectory(ctx, d)
	if err != nil {
		return nil, entityError(EntityDirectory, op, rel, err)
	}

	link, err := t.q.GetDirectoryLinkByDirectory(ctx, d.ID)
	if err == nil {
		if !d.IsPublic {
			if err := t.SetDirectoryPublic(ctx, d, true); err != nil {
				return nil, err
			}
		}
		return &link, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, entityError(EntityDirectory, op, rel, fmt.Errorf("getting link: %w", err))
	}

	link, err = t.q.InsertDirectoryLink(ctx, sqlc.InsertDirectoryLinkParams{
		DirectoryID: d.ID,
		Url:         t.env.IDs.New(),
		CreatedAt:   t.env.Clock.Now(),
	})
	if err != nil {
		return nil, entityError(EntityDirectory, op, rel, rowError(err))
	}
	if err := t.SetDirectoryPublic(ctx, d, true); err != nil {
		return nil, err
	}
	return &link, nil
}

// FileLink returns the share link of f, creating one if f has none.
func (t *Tree) FileLink(ctx context.Context, f *sqlc.File) (*sqlc.FileLink, error) {
	const op = "share"
	rel, err := t.liveFile(ctx, f)
	if err != nil {
		return nil, entityError(EntityFile, op, rel, err)
	}

	link, err := t.q.GetFileLinkByFile(ctx, f.ID)
	if err == nil {
		if !f.IsPublic {
			if err := t.SetFilePublic(ctx, f, true); err != nil {
				return nil, err
			}
		}
		return &link, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, entityError(EntityFile, op, rel, fmt.Errorf("getting link: %w", err))
	}

	link, err = t.q.InsertFileLink(ctx, sqlc.InsertFileLinkParams{
		FileID:    f.ID,
		Url:       t.env.IDs.New(),
		CreatedAt: t.env.Clock.Now(),
	})
	if err != nil {
		return nil, entityError(EntityFile, op, rel, rowError(err))
	}
	if err := t.SetFilePublic(ctx, f, true); err != nil {
		return nil, err
	}
	return &link, nil
}

// RevokeDirectoryLink deletes the share link of d and makes it private.
func (t *Tree) RevokeDirectoryLink(ctx context.Context, d *sqlc.Directory) error {
	const op = "revoke"
	rel, err := t.liveDirectory(ctx, d)
	if err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}
	if _, err := t.q.GetDirectoryLinkByDirectory(ctx, d.ID); errors.Is(err, sql.ErrNoRows) {
		return entityError(EntityDirectory, op, rel, fmt.Errorf("link: %w", ErrNotFound))
	} else if err != nil {
		return entityError(EntityDirectory, op, rel, fmt.Errorf("getting link: %w", err))
	}

	if err := t.q.DeleteDirectoryLink(ctx, d.ID); err != nil {
		return entityError(EntityDirectory, op, rel, err)
	}
	return t.SetDirectoryPublic(ctx, d, false)
}

// RevokeFileLink deletes the share link of f and makes it private.
func (t *Tree) RevokeFileLink(ctx context.Context, f *sqlc.File) error {
	const op = "revoke"
	rel, err := t.liveFile(ctx, f)
	if err != nil {
		return entityError(EntityFile, op, rel, err)
	}
	if _, err := t.q.GetFileLinkByFile(ctx, f.ID); errors.Is(err, sql.ErrNoRows) {
		return entityError(EntityFile, op, rel, fmt.Errorf("link: %w", ErrNotFound))
	} else if err != nil {
		return entityError(EntityFile, op, rel, fmt.Errorf("getting link: %w", err))
	}

	if err := t.q.DeleteFileLink(ctx, f.ID); err != nil {
		return entityError(EntityFile, op, rel, err)
	}
	return t.SetFilePublic(ctx, f, false)
}

func (t *Tree) SetDirectoryPublic(ctx context.Context, d *sqlc.Directory, public bool) error {
	rel, err := t.liveDirectory(ctx, d)
	if err != nil {
		return entityError(EntityDirectory, "publish", rel, err)
	}
	now := t.env.Clock.Now()
	err = t.q.UpdateDirectoryPublic(ctx, sqlc.UpdateDirectoryPublicParams{
		IsPublic:  public,
		UpdatedAt: now,
		ID:        d.ID,
	})
	if err != nil {
		return entityError(EntityDirectory, "publish", rel, err)
	}
	d.IsPublic = public
	d.UpdatedAt = now
	return nil
}

func (t *Tree) SetFilePublic(ctx context.Context, f *sqlc.File, public bool) error {
	rel, err := t.liveFile(ctx, f)
	if err != nil {
		return entityError(EntityFile, "publish", rel, err)
	}
	now := t.env.Clock.Now()
	err = t.q.UpdateFilePublic(ctx, sqlc.UpdateFilePublicParams{
		IsPublic:  public,
		UpdatedAt: now,
		ID:        f.ID,
	})
	if err != nil {
		return entityError(EntityFile, "publish", rel, err)
	}
	f.IsPublic = public
	f.UpdatedAt = now
	return nil
}

// ResolveLink finds the entity a share token points to. Tokens of
// entities that are no longer public resolve to ErrNotFound.
func ResolveLink(ctx context.Context, q sqlc.Querier, token string) (*LinkTarget, error) {
	dl, err := q.GetDirectoryLinkByURL(ctx, token)
	switch {
	case err == nil:
		d, err := q.GetDirectory(ctx, dl.DirectoryID)
		if err != nil {
			return nil, fmt.Errorf("resolving link: %w", notFound(err))
		}
		if !d.IsPublic {
			return nil, fmt.Errorf("resolving link: %w", ErrNotFound)
		}
		return &LinkTarget{Directory: &d}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("resolving link: %w", err)
	}

	fl, err := q.GetFileLinkByURL(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolving link: %w", notFound(err))
	}
	f, err := q.GetFile(ctx, fl.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolving link: %w", notFound(err))
	}
	if !f.IsPublic {
		return nil, fmt.Errorf("resolving link: %w", ErrNotFound)
	}
	return &LinkTarget{File: &f}, nil
}

// liveDirectory checks that d belongs to the tree and still has a row.
func (t *Tree) liveDirectory(ctx context.Context, d *sqlc.Directory) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d == nil {
		return "", fmt.Errorf("repository root: %w", ErrInvalidArgument)
	}
	if err := t.owns(d.RepositoryID); err != nil {
		return d.Name, err
	}
	rel, err := t.RelativeDirectoryPath(ctx, d)
	if err != nil {
		return d.Name, err
	}
	if rel == "" {
		return d.Name, fmt.Errorf("directory %d: %w", d.ID, ErrNotFound)
	}
	return rel, nil
}

func (t *Tree) liveFile(ctx context.Context, f *sqlc.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f == nil {
		return "", fmt.Errorf("file: %w", ErrNotFound)
	}
	if err := t.owns(f.RepositoryID); err != nil {
		return f.Name, err
	}
	rel, err := t.RelativeFilePath(ctx, f)
	if err != nil {
		return f.Name, err
	}
	if rel == "" {
		return f.Name, fmt.Errorf("file %d: %w", f.ID, ErrNotFound)
	}
	return rel, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
