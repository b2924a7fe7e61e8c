package hoard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"hoard/internal/database/sqlc"
	"hoard/internal/fs"
)

// RepositoryPath is the real path of the repository owned by user. It is
// derived from the lower-cased user name and never stored.
func RepositoryPath(storageRoot string, user sqlc.User) string {
	name := user.LowerName
	if name == "" {
		name = strings.ToLower(user.Name)
	}
	return filepath.Join(storageRoot, name)
}

// CreateRepository creates the repository directory of user below the
// storage root, then its row. A user owns at most one repository.
func CreateRepository(ctx context.Context, q sqlc.Querier, env Env, user *sqlc.User, capacity int64) (*Tree, error) {
	const op = "create"
	env = env.withDefaults()
	if user == nil {
		return nil, entityError(EntityRepository, op, "", fmt.Errorf("user: %w", ErrNotFound))
	}
	if capacity <= 0 {
		return nil, entityError(EntityRepository, op, user.Name, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidArgument))
	}

	_, err := q.GetRepositoryByUserID(ctx, user.ID)
	switch {
	case err == nil:
		return nil, entityError(EntityRepository, op, user.Name, ErrAlreadyExists)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, entityError(EntityRepository, op, user.Name, fmt.Errorf("getting repository: %w", err))
	}

	gw, err := fs.New(RepositoryPath(env.StorageRoot, *user), env.StorageRoot)
	if err != nil {
		return nil, entityError(EntityRepository, op, user.Name, err)
	}
	if err := gw.MakeDirectory(false); err != nil {
		return nil, entityError(EntityRepository, op, user.Name, err)
	}

	repo, err := q.InsertRepository(ctx, sqlc.InsertRepositoryParams{
		UserID:    user.ID,
		Capacity:  capacity,
		CreatedAt: env.Clock.Now(),
	})
	if err != nil {
		if removeErr := gw.Remove(false); removeErr != nil {
			env.Logger.Error("compensation failed", "action", "remove repository directory", "path", gw.Path(), "error", removeErr)
		}
		return nil, entityError(EntityRepository, op, user.Name, rowError(err))
	}

	env.Logger.Info("repository created", "repository", repo.ID, "user", user.Name, "capacity", capacity)
	return newTree(q, env, *user, repo), nil
}

// OpenRepository returns the tree of the repository owned by user, or
// ErrNotFound when the user has none.
func OpenRepository(ctx context.Context, q sqlc.Querier, env Env, user *sqlc.User) (*Tree, error) {
	if user == nil {
		return nil, entityError(EntityRepository, "open", "", fmt.Errorf("user: %w", ErrNotFound))
	}
	repo, err := q.GetRepositoryByUserID(ctx, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entityError(EntityRepository, "open", user.Name, ErrNotFound)
	}
	if err != nil {
		return nil, entityError(EntityRepository, "open", user.Name, fmt.Errorf("getting repository: %w", err))
	}
	return newTree(q, env.withDefaults(), *user, repo), nil
}

// RemoveRepository removes every root-level directory and file, then the
// repository directory, then the row. The tree is unusable afterwards.
func (t *Tree) RemoveRepository(ctx context.Context) error {
	const op = "remove"
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.removeChildren(ctx, nil); err != nil {
		return entityError(EntityRepository, op, t.user.Name, err)
	}

	gw, err := fs.New(t.root, t.env.StorageRoot)
	if err != nil {
		return entityError(EntityRepository, op, t.user.Name, err)
	}
	if err := gw.Remove(false); err != nil {
		return entityError(EntityRepository, op, t.user.Name, err)
	}
	if err := t.q.DeleteRepository(ctx, t.repo.ID); err != nil {
		return entityError(EntityRepository, op, t.user.Name, err)
	}

	t.env.Logger.Info("repository removed", "repository", t.repo.ID, "user", t.user.Name)
	return nil
}

// UsedBytes is the total size of all files of the repository.
func (t *Tree) UsedBytes(ctx context.Context) (int64, error) {
	used, err := t.q.SumFileSizeByRepository(ctx, t.repo.ID)
	if err != nil {
		return 0, fmt.Errorf("summing file sizes: %w", err)
	}
	return used, nil
}

// RemainingCapacity is the capacity minus the used bytes, never below 0.
func (t *Tree) RemainingCapacity(ctx context.Context) (int64, error) {
	used, err := t.UsedBytes(ctx)
	if err != nil {
		return 0, err
	}
	return max(t.repo.Capacity-used, 0), nil
}

// SetCapacity changes the quota. Lowering it below the used bytes is
// allowed; further writes then fail until space is freed.
func (t *Tree) SetCapacity(ctx context.Context, capacity int64) error {
	if capacity <= 0 {
		return entityError(EntityRepository, "resize", t.user.Name, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidArgument))
	}
	err := t.q.UpdateRepositoryCapacity(ctx, sqlc.UpdateRepositoryCapacityParams{
		Capacity: capacity,
		ID:       t.repo.ID,
	})
	if err != nil {
		return entityError(EntityRepository, "resize", t.user.Name, err)
	}
	t.repo.Capacity = capacity
	return nil
}
