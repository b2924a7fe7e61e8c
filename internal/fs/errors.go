package fs

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrInvalidPath reports a logical path or entity name that fails
	// syntactic validation.
	ErrInvalidPath = errors.New("invalid path")

	// ErrIsolation reports an attempt to leave the isolated root, or to
	// mutate the root itself.
	ErrIsolation = errors.New("isolation violation")

	// ErrAlreadyExists reports a destination collision without force.
	ErrAlreadyExists = errors.New("already exists")

	// ErrLimitExceeded reports a stream longer than the byte limit it was
	// given.
	ErrLimitExceeded = errors.New("size limit exceeded")
)

// Error wraps an operating system failure with the attempted operation and
// the path relative to the isolated root. The underlying *os.PathError or
// *os.LinkError is unwrapped to its cause so errors.Is(err, fs.ErrNotExist)
// style checks keep working.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("filesystem %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("filesystem %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, path string, err error) error {
	var pathErr *os.PathError
	var linkErr *os.LinkError
	switch {
	case errors.As(err, &pathErr):
		err = pathErr.Err
	case errors.As(err, &linkErr):
		err = linkErr.Err
	}
	return &Error{Op: op, Path: path, Err: err}
}
