package hoard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hoard/internal/database/sqlc"
)

// FindUser looks a user up by name, case-insensitively.
func FindUser(ctx context.Context, q sqlc.Querier, name string) (*sqlc.User, error) {
	user, err := q.GetUserByLowerName(ctx, strings.ToLower(name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", name, err)
	}
	return &user, nil
}

// EnsureUser returns the user called name, creating the identity row when
// it does not exist yet. Accounts are owned elsewhere; this only provisions
// the row a repository hangs off.
func EnsureUser(ctx context.Context, q sqlc.Querier, env Env, name string) (*sqlc.User, error) {
	env = env.withDefaults()
	if err := validUserName(name); err != nil {
		return nil, err
	}

	user, err := FindUser(ctx, q, name)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return user, err
	}

	row, err := q.InsertUser(ctx, sqlc.InsertUserParams{
		ID:        env.IDs.New(),
		Name:      name,
		LowerName: strings.ToLower(name),
		CreatedAt: env.Clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("inserting user %q: %w", name, rowError(err))
	}
	env.Logger.Info("user provisioned", "user", name, "id", row.ID)
	return &row, nil
}

// validUserName rejects names that cannot be a single path segment below
// the storage root.
func validUserName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("user name %q: %w", name, ErrInvalidArgument)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("user name %q: %w", name, ErrInvalidArgument)
	}
	return nil
}
