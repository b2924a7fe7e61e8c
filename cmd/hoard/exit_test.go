package main

import (
	"errors"
	"fmt"
	"testing"

	"hoard/internal/hoard"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("file %q: %w", "a.txt", hoard.ErrNotFound), exitNotFound},
		{"conflict", &hoard.EntityError{Entity: hoard.EntityDirectory, Op: "create", Path: "docs", Err: hoard.ErrAlreadyExists}, exitConflict},
		{"bad request", hoard.ErrInvalidPath, exitBadRequest},
		{"quota", hoard.ErrQuotaExceeded, exitTooLarge},
		{"anything else", errors.New("disk on fire"), exitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
