package hoard

import (
	"database/sql"
	"errors"
	"fmt"

	"hoard/internal/database"
	"hoard/internal/fs"
)

var (
	ErrInvalidPath   = fs.ErrInvalidPath
	ErrIsolation     = fs.ErrIsolation
	ErrAlreadyExists = fs.ErrAlreadyExists

	ErrNotFound        = errors.New("not found")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Entity names used in EntityError.
const (
	EntityRepository = "repository"
	EntityDirectory  = "directory"
	EntityFile       = "file"
)

// EntityError adds what was being done, and to which entity, to a failure
// of a repository, directory or file operation.
type EntityError struct {
	Entity string
	Op     string
	Path   string
	Err    error
}

func (e *EntityError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s %s: %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", e.Entity, e.Op, e.Path, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// Category is the client-facing class of an error.
type Category string

const (
	CategoryNotFound   Category = "not-found"
	CategoryConflict   Category = "conflict"
	CategoryBadRequest Category = "bad-request"
	CategoryTooLarge   Category = "too-large"
	CategoryInternal   Category = "internal"
)

// Classify maps an error to its Category. Anything unrecognised,
// including wrapped filesystem failures, is internal. Classify(nil) is "".
func Classify(err error) Category {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return CategoryNotFound
	case errors.Is(err, ErrAlreadyExists):
		return CategoryConflict
	case errors.Is(err, ErrInvalidPath), errors.Is(err, ErrIsolation), errors.Is(err, ErrInvalidArgument):
		return CategoryBadRequest
	case errors.Is(err, ErrQuotaExceeded):
		return CategoryTooLarge
	default:
		return CategoryInternal
	}
}

func entityError(entity, op, path string, err error) error {
	return &EntityError{Entity: entity, Op: op, Path: path, Err: err}
}

// rowError turns a sibling-name constraint failure into ErrAlreadyExists.
func rowError(err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}
