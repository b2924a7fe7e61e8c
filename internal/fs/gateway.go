package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// TempPrefix starts the name of every in-flight write inside a repository.
const TempPrefix = ".hoard-tmp-"

// Options controls Move, Copy and Rename.
type Options struct {
	// NewName replaces the source name at the destination when set.
	NewName string
	// Force picks a collision-avoiding name instead of failing with
	// ErrAlreadyExists.
	Force bool
	// Shallow resolves the destination without touching the filesystem.
	// The destination name is used as is, since the caller expects the
	// object to be there already.
	Shallow bool
	// Skip leaves entries out of a directory copy. rel is slash separated
	// and relative to the copied directory; skipping a directory skips
	// everything below it.
	Skip func(rel string) bool
}

// Gateway performs filesystem operations on one path, confined to an
// isolated root directory.
type Gateway struct {
	path string
	root string
}

// New returns a gateway for path inside root. root must be absolute; a
// relative path is taken relative to root.
func New(path, root string) (*Gateway, error) {
	if path == "" {
		return nil, errors.New("creating gateway: empty path")
	}
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("creating gateway: isolated root %q must be absolute", root)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return &Gateway{path: filepath.Clean(path), root: filepath.Clean(root)}, nil
}

func (g *Gateway) Path() string { return g.path }
func (g *Gateway) Root() string { return g.root }
func (g *Gateway) Name() string { return filepath.Base(g.path) }

// RelativePath is the slash separated path below the isolated root.
func (g *Gateway) RelativePath() string {
	rel, err := filepath.Rel(g.root, g.path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (g *Gateway) Exists() bool {
	_, err := os.Lstat(g.path)
	return err == nil
}

func (g *Gateway) IsFile() bool {
	info, err := os.Lstat(g.path)
	return err == nil && info.Mode().IsRegular()
}

func (g *Gateway) IsDirectory() bool {
	info, err := os.Lstat(g.path)
	return err == nil && info.IsDir()
}

// Size returns the byte count of a file, or the total of the regular files
// below a directory.
func (g *Gateway) Size() (int64, error) {
	info, err := os.Lstat(g.path)
	if err != nil {
		return 0, newError("size", g.RelativePath(), err)
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	err = filepath.Walk(g.path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, newError("size", g.RelativePath(), err)
	}
	return total, nil
}

// Open opens the file for reading.
func (g *Gateway) Open() (*os.File, error) {
	if err := CheckIsolation(g.path, g.root); err != nil {
		return nil, err
	}
	f, err := os.Open(g.path)
	if err != nil {
		return nil, newError("open", g.RelativePath(), err)
	}
	return f, nil
}

// Entries lists the directory. Listing the root itself is allowed.
func (g *Gateway) Entries() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(g.path)
	if err != nil {
		return nil, newError("list", g.RelativePath(), err)
	}
	return entries, nil
}

// MakeDirectory creates the directory and any missing parents. With force
// an existing directory is accepted.
func (g *Gateway) MakeDirectory(force bool) error {
	if err := CheckIsolation(g.path, g.root); err != nil {
		return err
	}
	if g.Exists() && !force {
		return fmt.Errorf("%s: %w", g.RelativePath(), ErrAlreadyExists)
	}
	if err := os.MkdirAll(g.path, 0o755); err != nil {
		return newError("mkdir", g.RelativePath(), err)
	}
	return nil
}

// WriteFile streams r into the file and returns the number of bytes
// written. The data goes to a temporary file next to the destination which
// is renamed into place, so readers never see a partial file. With force an
// existing file is replaced.
func (g *Gateway) WriteFile(ctx context.Context, r io.Reader, force bool) (int64, error) {
	rel := g.RelativePath()
	if err := CheckIsolation(g.path, g.root); err != nil {
		return 0, err
	}
	if g.Exists() {
		if !force {
			return 0, fmt.Errorf("%s: %w", rel, ErrAlreadyExists)
		}
		if g.IsDirectory() {
			return 0, newError("write", rel, syscall.EISDIR)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(g.path), TempPrefix+"*")
	if err != nil {
		return 0, newError("write", rel, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, ContextReader(ctx, r))
	if err != nil {
		tmp.Close()
		if errors.Is(err, ErrLimitExceeded) || ctx.Err() != nil {
			return 0, fmt.Errorf("writing %s: %w", rel, err)
		}
		return 0, newError("write", rel, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, newError("write", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, newError("write", rel, err)
	}
	if err := os.Rename(tmpPath, g.path); err != nil {
		return 0, newError("write", rel, err)
	}

	success = true
	return written, nil
}

// Remove deletes the file or the whole directory tree. A missing path is
// not an error. With shallow only the isolation check runs.
func (g *Gateway) Remove(shallow bool) error {
	if err := CheckIsolation(g.path, g.root); err != nil {
		return err
	}
	if shallow {
		return nil
	}

	info, err := os.Lstat(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return newError("remove", g.RelativePath(), err)
	}

	if info.IsDir() {
		err = os.RemoveAll(g.path)
	} else {
		err = os.Remove(g.path)
	}
	if err != nil {
		return newError("remove", g.RelativePath(), err)
	}
	return nil
}

// Move moves the object into targetDir and returns a gateway bound to the
// destination. Renames across devices fall back to copy and remove.
func (g *Gateway) Move(ctx context.Context, targetDir string, opts Options) (*Gateway, error) {
	target, err := g.prepare(targetDir, opts)
	if err != nil {
		return nil, err
	}
	if opts.Shallow {
		return target, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !g.Exists() {
		return nil, newError("move", g.RelativePath(), os.ErrNotExist)
	}

	if err := os.Rename(g.path, target.path); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return nil, newError("move", g.RelativePath(), err)
		}
		if err := g.copyTo(ctx, target.path, nil); err != nil {
			return nil, newError("move", g.RelativePath(), err)
		}
		if err := os.RemoveAll(g.path); err != nil {
			return nil, newError("move", g.RelativePath(), err)
		}
	}
	return target, nil
}

// Copy duplicates the object into targetDir and returns a gateway bound to
// the copy. Directories are copied recursively.
func (g *Gateway) Copy(ctx context.Context, targetDir string, opts Options) (*Gateway, error) {
	target, err := g.prepare(targetDir, opts)
	if err != nil {
		return nil, err
	}
	if opts.Shallow {
		return target, nil
	}
	if !g.Exists() {
		return nil, newError("copy", g.RelativePath(), os.ErrNotExist)
	}

	if err := g.copyTo(ctx, target.path, opts.Skip); err != nil {
		os.RemoveAll(target.path)
		return nil, newError("copy", g.RelativePath(), err)
	}
	return target, nil
}

// Rename renames the object inside its current directory.
func (g *Gateway) Rename(ctx context.Context, newName string, opts Options) (*Gateway, error) {
	opts.NewName = newName
	return g.Move(ctx, filepath.Dir(g.path), opts)
}

func (g *Gateway) copyTo(ctx context.Context, dest string, skip func(string) bool) error {
	if g.IsDirectory() {
		return copyTree(ctx, g.path, dest, skip)
	}
	return copyFile(ctx, g.path, dest)
}

// prepare runs the isolation checks for a move or copy and resolves the
// destination name.
func (g *Gateway) prepare(targetDir string, opts Options) (*Gateway, error) {
	if err := CheckIsolation(g.path, g.root); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(targetDir) {
		targetDir = filepath.Join(g.root, targetDir)
	}

	name := opts.NewName
	if name == "" {
		name = g.Name()
	}
	if err := ValidName(name); err != nil {
		return nil, err
	}

	dest := filepath.Join(targetDir, name)
	if !opts.Shallow {
		taken, err := exists(dest)
		if err != nil {
			return nil, newError("stat", name, err)
		}
		if taken {
			if !opts.Force {
				return nil, fmt.Errorf("%s: %w", relativeTo(g.root, dest), ErrAlreadyExists)
			}
			name, err = NextFreeName(targetDir, name, g.IsDirectory())
			if err != nil {
				return nil, newError("stat", name, err)
			}
			dest = filepath.Join(targetDir, name)
		}
	}

	if err := CheckIsolation(dest, g.root); err != nil {
		return nil, err
	}
	if inside(g.path, dest) {
		return nil, fmt.Errorf("%s into itself: %w", g.RelativePath(), ErrInvalidPath)
	}
	return &Gateway{path: dest, root: g.root}, nil
}

func inside(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
