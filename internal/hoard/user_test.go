package hoard_test

import (
	"context"
	"errors"
	"testing"

	"hoard/internal/hoard"
)

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions once, case-insensitively", func(t *testing.T) {
		e := newTestEnv(t)

		created, err := hoard.EnsureUser(ctx, e.db.Queries(), e.env, "Alice")
		if err != nil {
			t.Fatalf("EnsureUser() error = %v", err)
		}
		if created.ID != "id-1" || created.Name != "Alice" || created.LowerName != "alice" {
			t.Errorf("EnsureUser() = %+v, want id-1 Alice/alice", created)
		}

		again, err := hoard.EnsureUser(ctx, e.db.Queries(), e.env, "ALICE")
		if err != nil {
			t.Fatalf("second EnsureUser() error = %v", err)
		}
		if again.ID != created.ID {
			t.Errorf("second EnsureUser() ID = %q, want %q", again.ID, created.ID)
		}
		if e.ids.Count() != 1 {
			t.Errorf("ids handed out = %d, want 1", e.ids.Count())
		}
	})

	t.Run("rejects names that are not a path segment", func(t *testing.T) {
		e := newTestEnv(t)
		for _, name := range []string{"", ".", "..", "a/b", `a\b`, "nul\x00"} {
			_, err := hoard.EnsureUser(ctx, e.db.Queries(), e.env, name)
			if !errors.Is(err, hoard.ErrInvalidArgument) {
				t.Errorf("EnsureUser(%q) error = %v, want ErrInvalidArgument", name, err)
			}
		}
	})
}

func TestFindUser(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	if _, err := hoard.FindUser(ctx, e.db.Queries(), "nobody"); !errors.Is(err, hoard.ErrNotFound) {
		t.Errorf("FindUser() error = %v, want ErrNotFound", err)
	}

	created, err := hoard.EnsureUser(ctx, e.db.Queries(), e.env, "bob")
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	found, err := hoard.FindUser(ctx, e.db.Queries(), "Bob")
	if err != nil {
		t.Fatalf("FindUser() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("FindUser() ID = %q, want %q", found.ID, created.ID)
	}
}
