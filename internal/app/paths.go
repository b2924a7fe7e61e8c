package app

import (
	"context"
	"fmt"
	"path"

	"hoard/internal/database/sqlc"
	"hoard/internal/fs"
	"hoard/internal/hoard"
)

// lookupDirectory resolves a raw logical path to a directory row. The
// empty path is the repository root and resolves to nil.
func lookupDirectory(ctx context.Context, tree *hoard.Tree, raw string) (*sqlc.Directory, error) {
	p, err := fs.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if p == "" {
		return nil, nil
	}
	d, err := tree.DirectoryByPath(ctx, p)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("directory %q: %w", p, hoard.ErrNotFound)
	}
	return d, nil
}

// lookupEntry is lookupDirectory for paths that must name an entry below
// the root.
func lookupEntry(ctx context.Context, tree *hoard.Tree, raw string) (*sqlc.Directory, error) {
	d, err := lookupDirectory(ctx, tree, raw)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("directory %q: the repository root: %w", raw, hoard.ErrInvalidArgument)
	}
	return d, nil
}

func lookupFile(ctx context.Context, tree *hoard.Tree, raw string) (*sqlc.File, error) {
	p, err := fs.Normalize(raw)
	if err != nil {
		return nil, err
	}
	f, err := tree.FileByPath(ctx, p)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("file %q: %w", p, hoard.ErrNotFound)
	}
	return f, nil
}

// splitParent resolves the parent directory of a raw path that is about to
// be created and returns it with the last segment.
func splitParent(ctx context.Context, tree *hoard.Tree, raw string) (*sqlc.Directory, string, error) {
	p, err := fs.Normalize(raw)
	if err != nil {
		return nil, "", err
	}
	if p == "" {
		return nil, "", fmt.Errorf("%w: empty path", fs.ErrInvalidPath)
	}
	dir, name := path.Split(p)
	parent, err := lookupDirectory(ctx, tree, dir)
	if err != nil {
		return nil, "", err
	}
	return parent, name, nil
}
