package hoard

import (
	"context"
	"fmt"
	"time"

	"hoard/internal/database/sqlc"
)

// DirectoryInfo is the client-facing view of a directory. Used counts the
// files directly inside it.
type DirectoryInfo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	IsPublic  bool      `json:"is_public"`
	Used      int64     `json:"used"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FileInfo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RepositoryInfo struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	Capacity  int64     `json:"capacity"`
	Used      int64     `json:"used"`
	Remaining int64     `json:"remaining"`
	CreatedAt time.Time `json:"created_at"`
}

// RepositoryContent lists one level of the tree.
type RepositoryContent struct {
	Directories []DirectoryInfo `json:"directories"`
	Files       []FileInfo      `json:"files"`
}

func (t *Tree) DirectoryInfo(ctx context.Context, d *sqlc.Directory) (*DirectoryInfo, error) {
	rel, err := t.liveDirectory(ctx, d)
	if err != nil {
		return nil, entityError(EntityDirectory, "info", rel, err)
	}
	used, err := t.q.SumFileSizeByParent(ctx, parentID(d))
	if err != nil {
		return nil, entityError(EntityDirectory, "info", rel, fmt.Errorf("summing file sizes: %w", err))
	}
	return &DirectoryInfo{
		ID:        d.ID,
		Name:      d.Name,
		Path:      rel,
		IsPublic:  d.IsPublic,
		Used:      used,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (t *Tree) FileInfo(ctx context.Context, f *sqlc.File) (*FileInfo, error) {
	rel, err := t.liveFile(ctx, f)
	if err != nil {
		return nil, entityError(EntityFile, "info", rel, err)
	}
	return &FileInfo{
		ID:        f.ID,
		Name:      f.Name,
		Path:      rel,
		Size:      f.Size,
		IsPublic:  f.IsPublic,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}, nil
}

// Info summarises the repository and its quota.
func (t *Tree) Info(ctx context.Context) (*RepositoryInfo, error) {
	used, err := t.UsedBytes(ctx)
	if err != nil {
		return nil, entityError(EntityRepository, "info", t.user.Name, err)
	}
	return &RepositoryInfo{
		ID:        t.repo.ID,
		Owner:     t.user.Name,
		Capacity:  t.repo.Capacity,
		Used:      used,
		Remaining: max(t.repo.Capacity-used, 0),
		CreatedAt: t.repo.CreatedAt,
	}, nil
}

// Content lists the directories and files directly inside dir, or the
// root level when dir is nil. Both lists are ordered by name.
func (t *Tree) Content(ctx context.Context, dir *sqlc.Directory) (*RepositoryContent, error) {
	if dir != nil {
		if rel, err := t.liveDirectory(ctx, dir); err != nil {
			return nil, entityError(EntityDirectory, "list", rel, err)
		}
	}

	dirs, err := t.listDirectories(ctx, dir)
	if err != nil {
		return nil, entityError(EntityDirectory, "list", "", fmt.Errorf("listing directories: %w", err))
	}
	files, err := t.listFiles(ctx, dir)
	if err != nil {
		return nil, entityError(EntityDirectory, "list", "", fmt.Errorf("listing files: %w", err))
	}

	content := &RepositoryContent{
		Directories: make([]DirectoryInfo, 0, len(dirs)),
		Files:       make([]FileInfo, 0, len(files)),
	}
	for i := range dirs {
		info, err := t.DirectoryInfo(ctx, &dirs[i])
		if err != nil {
			return nil, err
		}
		content.Directories = append(content.Directories, *info)
	}
	for i := range files {
		info, err := t.FileInfo(ctx, &files[i])
		if err != nil {
			return nil, err
		}
		content.Files = append(content.Files, *info)
	}
	return content, nil
}
