package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempTarget receives an upload into <workingDir>/cache/<uuid> before it is
// imported into a repository. Close always removes the file, so callers
// defer it right after creation.
type TempTarget struct {
	path string
	file *os.File
}

// NewTempTarget prepares a target below workingDir. Nothing is created
// until Receive is called.
func NewTempTarget(workingDir string) (*TempTarget, error) {
	if workingDir == "" {
		return nil, errors.New("creating temp target: empty working directory")
	}
	return &TempTarget{
		path: filepath.Join(workingDir, "cache", uuid.NewString()),
	}, nil
}

func (t *TempTarget) Path() string {
	return t.path
}

// Receive streams r into the target and returns the byte count. A stream
// longer than limit fails with ErrLimitExceeded; a cancelled ctx stops the
// copy at the next read.
func (t *TempTarget) Receive(ctx context.Context, r io.Reader, limit int64) (int64, error) {
	if t.file != nil {
		return 0, errors.New("receiving upload: target already used")
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return 0, newError("receive", "", err)
	}

	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, newError("receive", "", err)
	}
	t.file = f

	written, err := io.Copy(f, LimitReader(ContextReader(ctx, r), limit))
	if err != nil {
		if errors.Is(err, ErrLimitExceeded) || ctx.Err() != nil {
			return written, fmt.Errorf("receiving upload: %w", err)
		}
		return written, newError("receive", "", err)
	}
	if err := f.Sync(); err != nil {
		return written, newError("receive", "", err)
	}
	return written, nil
}

// Close releases the file and removes it from disk.
func (t *TempTarget) Close() error {
	if t.file != nil {
		t.file.Close()
	}
	if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return newError("cleanup", "", err)
	}
	return nil
}
