package hoard_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"hoard/internal/hoard"
)

func TestTree_Info(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "Alice", 1000)
	docs := mustCreateDirectory(t, tree, nil, "docs")
	mustCreateFile(t, tree, docs, "a.txt", strings.Repeat("a", 100))
	mustCreateFile(t, tree, nil, "b.txt", strings.Repeat("b", 50))

	info, err := tree.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	want := hoard.RepositoryInfo{
		ID:        tree.Repository().ID,
		Owner:     "Alice",
		Capacity:  1000,
		Used:      150,
		Remaining: 850,
		CreatedAt: info.CreatedAt,
	}
	if *info != want {
		t.Errorf("Info() = %+v, want %+v", *info, want)
	}
	if !info.CreatedAt.Equal(e.clock.Now()) {
		t.Errorf("CreatedAt = %v, want %v", info.CreatedAt, e.clock.Now())
	}
}

func TestTree_DirectoryInfo(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 1000)
	docs := mustCreateDirectory(t, tree, nil, "docs")
	drafts := mustCreateDirectory(t, tree, docs, "drafts")
	mustCreateFile(t, tree, docs, "a.txt", "12345")
	mustCreateFile(t, tree, drafts, "b.txt", "123")

	info, err := tree.DirectoryInfo(ctx, drafts)
	if err != nil {
		t.Fatalf("DirectoryInfo() error = %v", err)
	}
	if info.Path != "docs/drafts" || info.Name != "drafts" || info.Used != 3 {
		t.Errorf("DirectoryInfo() = %+v, want docs/drafts using 3 bytes", info)
	}

	// Only files directly inside count.
	info, err = tree.DirectoryInfo(ctx, docs)
	if err != nil {
		t.Fatalf("DirectoryInfo() error = %v", err)
	}
	if info.Used != 5 {
		t.Errorf("Used = %d, want 5", info.Used)
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, key := range []string{`"path":"docs"`, `"is_public":false`, `"used":5`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("JSON %s does not contain %s", data, key)
		}
	}

	if err := tree.RemoveDirectory(ctx, drafts); err != nil {
		t.Fatalf("RemoveDirectory() error = %v", err)
	}
	if _, err := tree.DirectoryInfo(ctx, drafts); !errors.Is(err, hoard.ErrNotFound) {
		t.Errorf("DirectoryInfo(removed) error = %v, want ErrNotFound", err)
	}
}

func TestTree_FileInfo(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 1000)
	docs := mustCreateDirectory(t, tree, nil, "docs")
	f := mustCreateFile(t, tree, docs, "a.txt", "12345")

	info, err := tree.FileInfo(ctx, f)
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}
	if info.Path != "docs/a.txt" || info.Size != 5 || info.IsPublic {
		t.Errorf("FileInfo() = %+v, want private docs/a.txt of 5 bytes", info)
	}

	if err := tree.RemoveFile(ctx, f); err != nil {
		t.Fatalf("RemoveFile() error = %v", err)
	}
	if _, err := tree.FileInfo(ctx, f); !errors.Is(err, hoard.ErrNotFound) {
		t.Errorf("FileInfo(removed) error = %v, want ErrNotFound", err)
	}
}

func TestTree_Content(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 1000)

	zeta := mustCreateDirectory(t, tree, nil, "zeta")
	mustCreateDirectory(t, tree, nil, "alpha")
	mustCreateFile(t, tree, nil, "y.txt", "y")
	mustCreateFile(t, tree, nil, "b.txt", "bb")
	mustCreateFile(t, tree, zeta, "inner.txt", "inner")

	content, err := tree.Content(ctx, nil)
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	var dirs, files []string
	for _, d := range content.Directories {
		dirs = append(dirs, d.Path)
	}
	for _, f := range content.Files {
		files = append(files, f.Path)
	}
	if strings.Join(dirs, ",") != "alpha,zeta" {
		t.Errorf("directories = %v, want [alpha zeta]", dirs)
	}
	if strings.Join(files, ",") != "b.txt,y.txt" {
		t.Errorf("files = %v, want [b.txt y.txt]", files)
	}

	inner, err := tree.Content(ctx, zeta)
	if err != nil {
		t.Fatalf("Content(zeta) error = %v", err)
	}
	if len(inner.Directories) != 0 || len(inner.Files) != 1 || inner.Files[0].Path != "zeta/inner.txt" {
		t.Errorf("Content(zeta) = %+v, want only zeta/inner.txt", inner)
	}

	empty := mustDirectoryByPath(t, tree, "alpha")
	listing, err := tree.Content(ctx, empty)
	if err != nil {
		t.Fatalf("Content(alpha) error = %v", err)
	}
	if listing.Directories == nil || listing.Files == nil {
		t.Error("Content() of an empty directory has nil lists")
	}
}
