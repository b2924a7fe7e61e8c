package app

import (
	"context"
	"fmt"
	"io"

	"hoard/internal/database/sqlc"
	"hoard/internal/hoard"
)

// Repositories

// CreateRepository provisions userName if needed and creates their
// repository. A capacity of 0 uses the configured default.
func (a *HoardApp) CreateRepository(ctx context.Context, userName string, capacity int64) (*hoard.RepositoryInfo, error) {
	if capacity == 0 {
		capacity = a.cfg.Repository.Capacity
	}
	var info *hoard.RepositoryInfo
	err := a.mutate(ctx, userName, fmt.Sprintf("%s %d", userName, capacity), func(q sqlc.Querier) error {
		user, err := hoard.EnsureUser(ctx, q, a.env, userName)
		if err != nil {
			return err
		}
		tree, err := hoard.CreateRepository(ctx, q, a.env, user, capacity)
		if err != nil {
			return err
		}
		info, err = tree.Info(ctx)
		return err
	})
	return info, err
}

func (a *HoardApp) RemoveRepository(ctx context.Context, userName string) error {
	return a.Update(ctx, userName, userName, func(tree *hoard.Tree) error {
		return tree.RemoveRepository(ctx)
	})
}

func (a *HoardApp) RepositoryInfo(ctx context.Context, userName string) (*hoard.RepositoryInfo, error) {
	var info *hoard.RepositoryInfo
	err := a.View(ctx, userName, func(tree *hoard.Tree) error {
		var err error
		info, err = tree.Info(ctx)
		return err
	})
	return info, err
}

// ResizeRepository changes the capacity of userName's repository.
func (a *HoardApp) ResizeRepository(ctx context.Context, userName string, capacity int64) (*hoard.RepositoryInfo, error) {
	var info *hoard.RepositoryInfo
	err := a.Update(ctx, userName, fmt.Sprintf("%s %d", userName, capacity), func(tree *hoard.Tree) error {
		if err := tree.SetCapacity(ctx, capacity); err != nil {
			return err
		}
		var err error
		info, err = tree.Info(ctx)
		return err
	})
	return info, err
}

// List returns the directories and files directly inside the directory at
// dirPath ("" for the repository root).
func (a *HoardApp) List(ctx context.Context, userName, dirPath string) (*hoard.RepositoryContent, error) {
	var content *hoard.RepositoryContent
	err := a.View(ctx, userName, func(tree *hoard.Tree) error {
		dir, err := lookupDirectory(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		content, err = tree.Content(ctx, dir)
		return err
	})
	return content, err
}

// Reconcile compares the rows of userName's repository with its directory
// on disk.
func (a *HoardApp) Reconcile(ctx context.Context, userName string) (*hoard.ReconcileReport, error) {
	var report *hoard.ReconcileReport
	err := a.View(ctx, userName, func(tree *hoard.Tree) error {
		var err error
		report, err = tree.Reconcile(ctx)
		return err
	})
	return report, err
}

// Directories

// MakeDirectory creates the directory at dirPath. Its parent must exist.
// With force a taken name is replaced by the next free variant.
func (a *HoardApp) MakeDirectory(ctx context.Context, userName, dirPath string, force bool) (*hoard.DirectoryInfo, error) {
	var info *hoard.DirectoryInfo
	err := a.Update(ctx, userName, userName+" "+dirPath, func(tree *hoard.Tree) error {
		parent, name, err := splitParent(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		d, err := tree.CreateDirectory(ctx, parent, name, force)
		if err != nil {
			return err
		}
		info, err = tree.DirectoryInfo(ctx, d)
		return err
	})
	return info, err
}

func (a *HoardApp) DirectoryInfo(ctx context.Context, userName, dirPath string) (*hoard.DirectoryInfo, error) {
	var info *hoard.DirectoryInfo
	err := a.View(ctx, userName, func(tree *hoard.Tree) error {
		d, err := lookupEntry(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		info, err = tree.DirectoryInfo(ctx, d)
		return err
	})
	return info, err
}

func (a *HoardApp) RenameDirectory(ctx context.Context, userName, dirPath, newName string, force bool) (*hoard.DirectoryInfo, error) {
	var info *hoard.DirectoryInfo
	err := a.Update(ctx, userName, userName+" "+dirPath+" "+newName, func(tree *hoard.Tree) error {
		d, err := lookupEntry(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		if err := tree.RenameDirectory(ctx, d, newName, force); err != nil {
			return err
		}
		info, err = tree.DirectoryInfo(ctx, d)
		return err
	})
	return info, err
}

// MoveDirectory moves the directory at dirPath into the directory at
// targetPath ("" for the repository root).
func (a *HoardApp) MoveDirectory(ctx context.Context, userName, dirPath, targetPath string, force bool) (*hoard.DirectoryInfo, error) {
	var info *hoard.DirectoryInfo
	err := a.Update(ctx, userName, userName+" "+dirPath+" "+targetPath, func(tree *hoard.Tree) error {
		d, err := lookupEntry(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		target, err := lookupDirectory(ctx, tree, targetPath)
		if err != nil {
			return err
		}
		if err := tree.MoveDirectory(ctx, d, target, force); err != nil {
			return err
		}
		info, err = tree.DirectoryInfo(ctx, d)
		return err
	})
	return info, err
}

// CopyDirectory copies the directory at dirPath and its subtree into the
// directory at targetPath and returns the copy.
func (a *HoardApp) CopyDirectory(ctx context.Context, userName, dirPath, targetPath string, force bool) (*hoard.DirectoryInfo, error) {
	var info *hoard.DirectoryInfo
	err := a.Update(ctx, userName, userName+" "+dirPath+" "+targetPath, func(tree *hoard.Tree) error {
		d, err := lookupEntry(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		target, err := lookupDirectory(ctx, tree, targetPath)
		if err != nil {
			return err
		}
		copied, err := tree.CopyDirectory(ctx, d, target, force)
		if err != nil {
			return err
		}
		info, err = tree.DirectoryInfo(ctx, copied)
		return err
	})
	return info, err
}

func (a *HoardApp) RemoveDirectory(ctx context.Context, userName, dirPath string) error {
	return a.Update(ctx, userName, userName+" "+dirPath, func(tree *hoard.Tree) error {
		d, err := lookupEntry(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		return tree.RemoveDirectory(ctx, d)
	})
}

// Files

// PutFile uploads r as the file at filePath. Its parent must exist.
func (a *HoardApp) PutFile(ctx context.Context, userName, filePath string, r io.Reader, force bool) (*hoard.FileInfo, error) {
	var info *hoard.FileInfo
	err := a.Update(ctx, userName, userName+" "+filePath, func(tree *hoard.Tree) error {
		parent, name, err := splitParent(ctx, tree, filePath)
		if err != nil {
			return err
		}
		f, err := tree.Upload(ctx, parent, name, r, force)
		if err != nil {
			return err
		}
		info, err = tree.FileInfo(ctx, f)
		return err
	})
	return info, err
}

// GetFile writes the content of the file at filePath to w and returns the
// number of bytes written.
func (a *HoardApp) GetFile(ctx context.Context, userName, filePath string, w io.Writer) (int64, error) {
	var written int64
	err := a.View(ctx, userName, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		rc, err := tree.OpenFile(ctx, f)
		if err != nil {
			return err
		}
		defer rc.Close()

		written, err = io.Copy(w, rc)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filePath, err)
		}
		return nil
	})
	return written, err
}

func (a *HoardApp) FileInfo(ctx context.Context, userName, filePath string) (*hoard.FileInfo, error) {
	var info *hoard.FileInfo
	err := a.View(ctx, userName, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		info, err = tree.FileInfo(ctx, f)
		return err
	})
	return info, err
}

func (a *HoardApp) RenameFile(ctx context.Context, userName, filePath, newName string, force bool) (*hoard.FileInfo, error) {
	var info *hoard.FileInfo
	err := a.Update(ctx, userName, userName+" "+filePath+" "+newName, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		if err := tree.RenameFile(ctx, f, newName, force); err != nil {
			return err
		}
		info, err = tree.FileInfo(ctx, f)
		return err
	})
	return info, err
}

func (a *HoardApp) MoveFile(ctx context.Context, userName, filePath, targetPath string, force bool) (*hoard.FileInfo, error) {
	var info *hoard.FileInfo
	err := a.Update(ctx, userName, userName+" "+filePath+" "+targetPath, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		target, err := lookupDirectory(ctx, tree, targetPath)
		if err != nil {
			return err
		}
		if err := tree.MoveFile(ctx, f, target, force); err != nil {
			return err
		}
		info, err = tree.FileInfo(ctx, f)
		return err
	})
	return info, err
}

func (a *HoardApp) CopyFile(ctx context.Context, userName, filePath, targetPath string, force bool) (*hoard.FileInfo, error) {
	var info *hoard.FileInfo
	err := a.Update(ctx, userName, userName+" "+filePath+" "+targetPath, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		target, err := lookupDirectory(ctx, tree, targetPath)
		if err != nil {
			return err
		}
		copied, err := tree.CopyFile(ctx, f, target, force)
		if err != nil {
			return err
		}
		info, err = tree.FileInfo(ctx, copied)
		return err
	})
	return info, err
}

func (a *HoardApp) RemoveFile(ctx context.Context, userName, filePath string) error {
	return a.Update(ctx, userName, userName+" "+filePath, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		return tree.RemoveFile(ctx, f)
	})
}
