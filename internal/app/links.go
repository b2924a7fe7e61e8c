package app

import (
	"context"
	"fmt"

	"hoard/internal/hoard"
)

// SharedLink is a share token together with the entity it points to.
// Exactly one of Directory and File is set.
type SharedLink struct {
	Token     string               `json:"token"`
	Owner     string               `json:"owner"`
	Directory *hoard.DirectoryInfo `json:"directory,omitempty"`
	File      *hoard.FileInfo      `json:"file,omitempty"`
}

// ShareDirectory returns the share link of the directory at dirPath,
// creating it if needed. The directory becomes public.
func (a *HoardApp) ShareDirectory(ctx context.Context, userName, dirPath string) (*SharedLink, error) {
	var shared *SharedLink
	err := a.Update(ctx, userName, userName+" "+dirPath, func(tree *hoard.Tree) error {
		d, err := lookupEntry(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		link, err := tree.DirectoryLink(ctx, d)
		if err != nil {
			return err
		}
		info, err := tree.DirectoryInfo(ctx, d)
		if err != nil {
			return err
		}
		shared = &SharedLink{Token: link.Url, Owner: tree.User().Name, Directory: info}
		return nil
	})
	return shared, err
}

// ShareFile returns the share link of the file at filePath, creating it
// if needed. The file becomes public.
func (a *HoardApp) ShareFile(ctx context.Context, userName, filePath string) (*SharedLink, error) {
	var shared *SharedLink
	err := a.Update(ctx, userName, userName+" "+filePath, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		link, err := tree.FileLink(ctx, f)
		if err != nil {
			return err
		}
		info, err := tree.FileInfo(ctx, f)
		if err != nil {
			return err
		}
		shared = &SharedLink{Token: link.Url, Owner: tree.User().Name, File: info}
		return nil
	})
	return shared, err
}

// RevokeDirectory drops the share link of the directory at dirPath and
// makes it private again.
func (a *HoardApp) RevokeDirectory(ctx context.Context, userName, dirPath string) error {
	return a.Update(ctx, userName, userName+" "+dirPath, func(tree *hoard.Tree) error {
		d, err := lookupEntry(ctx, tree, dirPath)
		if err != nil {
			return err
		}
		return tree.RevokeDirectoryLink(ctx, d)
	})
}

func (a *HoardApp) RevokeFile(ctx context.Context, userName, filePath string) error {
	return a.Update(ctx, userName, userName+" "+filePath, func(tree *hoard.Tree) error {
		f, err := lookupFile(ctx, tree, filePath)
		if err != nil {
			return err
		}
		return tree.RevokeFileLink(ctx, f)
	})
}

// ResolveLink finds the public entity a share token points to, in any
// repository.
func (a *HoardApp) ResolveLink(ctx context.Context, token string) (*SharedLink, error) {
	q := a.db.Queries()
	target, err := hoard.ResolveLink(ctx, q, token)
	if err != nil {
		return nil, err
	}

	var repositoryID int64
	if target.Directory != nil {
		repositoryID = target.Directory.RepositoryID
	} else {
		repositoryID = target.File.RepositoryID
	}
	repo, err := q.GetRepository(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("getting repository %d: %w", repositoryID, err)
	}
	user, err := q.GetUser(ctx, repo.UserID)
	if err != nil {
		return nil, fmt.Errorf("getting owner of repository %d: %w", repositoryID, err)
	}
	tree, err := hoard.OpenRepository(ctx, q, a.env, &user)
	if err != nil {
		return nil, err
	}

	shared := &SharedLink{Token: token, Owner: user.Name}
	if target.Directory != nil {
		shared.Directory, err = tree.DirectoryInfo(ctx, target.Directory)
	} else {
		shared.File, err = tree.FileInfo(ctx, target.File)
	}
	if err != nil {
		return nil, err
	}
	return shared, nil
}
