package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var logicalPath = regexp.MustCompile(`^/?(.*/)*([^/]*)$`)

// CheckPath reports whether p has the shape of a logical path.
func CheckPath(p string) bool {
	if strings.ContainsRune(p, 0) {
		return false
	}
	return logicalPath.MatchString(p)
}

// Normalize validates a client supplied logical path and returns it
// relative to the repository root, without leading or trailing slashes.
// The empty string denotes the root. Empty interior segments and "." or
// ".." segments are rejected; the filesystem is never consulted.
func Normalize(p string) (string, error) {
	if !CheckPath(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	trimmed := strings.TrimPrefix(p, "/")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return "", nil
	}

	for _, segment := range strings.Split(trimmed, "/") {
		if err := ValidName(segment); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return trimmed, nil
}

// Segments splits a normalized path into its names. The root has none.
func Segments(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, "/")
}

// ValidName checks a single entity name.
func ValidName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidPath)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidPath, name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return nil
}

// CheckIsolation verifies that path, once symlinks are resolved, lies
// strictly below root. Only the deepest existing ancestor of path is
// resolved, so it also works for destinations that do not exist yet.
func CheckIsolation(path, root string) error {
	realRoot, err := resolveExisting(filepath.Clean(root))
	if err != nil {
		return newError("isolation", "", err)
	}
	realPath, err := resolveExisting(filepath.Clean(path))
	if err != nil {
		return newError("isolation", "", err)
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil {
		return fmt.Errorf("%s: %w", path, ErrIsolation)
	}
	if rel == "." {
		return fmt.Errorf("modifying the isolated root: %w", ErrIsolation)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s is outside the isolated root: %w", path, ErrIsolation)
	}
	return nil
}

// resolveExisting resolves symlinks of the deepest existing ancestor of p
// and re-appends the components that do not exist yet.
func resolveExisting(p string) (string, error) {
	var missing []string
	current := p
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
