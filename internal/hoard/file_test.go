package hoard_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hoard/internal/hoard"
	"hoard/internal/testutil"
)

func TestTree_CreateFile(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1<<20)
		docs := mustCreateDirectory(t, tree, nil, "docs")

		payload := bytes.Repeat([]byte{0x00, 0xff, 'h', 'o', 'a', 'r', 'd'}, 1000)
		f, err := tree.CreateFile(ctx, docs, "blob.bin", bytes.NewReader(payload), false)
		if err != nil {
			t.Fatalf("CreateFile() error = %v", err)
		}
		if f.Size != int64(len(payload)) {
			t.Errorf("Size = %d, want %d", f.Size, len(payload))
		}

		realPath, err := tree.FileRealPath(ctx, f)
		if err != nil {
			t.Fatalf("FileRealPath() error = %v", err)
		}
		onDisk, err := os.ReadFile(realPath)
		if err != nil {
			t.Fatalf("reading %s: %v", realPath, err)
		}
		if !bytes.Equal(onDisk, payload) {
			t.Error("bytes on disk differ from the written bytes")
		}
		if got := readAll(t, tree, f); got != string(payload) {
			t.Error("OpenFile() returned different bytes")
		}
		rel, err := tree.RelativeFilePath(ctx, f)
		if err != nil || rel != "docs/blob.bin" {
			t.Errorf("RelativeFilePath() = %q, %v; want docs/blob.bin", rel, err)
		}
	})

	t.Run("an empty stream makes an empty file", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)

		f := mustCreateFile(t, tree, nil, "empty", "")
		if f.Size != 0 {
			t.Errorf("Size = %d, want 0", f.Size)
		}
		assertFileOnDisk(t, tree, f, "empty", "")
	})

	t.Run("collision without force", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		mustCreateFile(t, tree, nil, "a.txt", "first")

		_, err := tree.CreateFile(ctx, nil, "a.txt", strings.NewReader("second"), false)
		if !errors.Is(err, hoard.ErrAlreadyExists) {
			t.Fatalf("CreateFile() error = %v, want ErrAlreadyExists", err)
		}
		if hoard.Classify(err) != hoard.CategoryConflict {
			t.Errorf("Classify() = %q, want %q", hoard.Classify(err), hoard.CategoryConflict)
		}
		assertFileOnDisk(t, tree, mustFileByPath(t, tree, "a.txt"), "a.txt", "first")
	})

	t.Run("force names files without an extension", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		mustCreateFile(t, tree, nil, "Makefile", "all:")

		f, err := tree.CreateFile(ctx, nil, "Makefile", strings.NewReader("test:"), true)
		if err != nil {
			t.Fatalf("CreateFile(force) error = %v", err)
		}
		if f.Name != "Makefile.1" {
			t.Errorf("Name = %q, want Makefile.1", f.Name)
		}
	})

	t.Run("exceeding the capacity leaves nothing behind", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 100)
		mustCreateFile(t, tree, nil, "a.txt", strings.Repeat("a", 60))

		_, err := tree.CreateFile(ctx, nil, "b.txt", strings.NewReader(strings.Repeat("b", 41)), false)
		if !errors.Is(err, hoard.ErrQuotaExceeded) {
			t.Fatalf("CreateFile() error = %v, want ErrQuotaExceeded", err)
		}
		if hoard.Classify(err) != hoard.CategoryTooLarge {
			t.Errorf("Classify() = %q, want %q", hoard.Classify(err), hoard.CategoryTooLarge)
		}
		if names := testutil.ListDir(t, tree.Root()); len(names) != 1 || names[0] != "a.txt" {
			t.Errorf("repository holds %v, want only a.txt", names)
		}
		if f, err := tree.FileByPath(ctx, "b.txt"); err != nil || f != nil {
			t.Errorf("FileByPath(b.txt) = %v, %v; want nil, nil", f, err)
		}

		// Exactly the remaining capacity still fits.
		f := mustCreateFile(t, tree, nil, "b.txt", strings.Repeat("b", 40))
		if f.Size != 40 {
			t.Errorf("Size = %d, want 40", f.Size)
		}
	})

	t.Run("removes the written file when the row insert fails", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		failing := e.reopen(t, tree, &failingQuerier{
			Querier:    e.db.Queries(),
			insertFile: errors.New("database is locked"),
		})

		if _, err := failing.CreateFile(ctx, nil, "a.txt", strings.NewReader("data"), false); err == nil {
			t.Fatal("CreateFile() expected error")
		}
		if names := testutil.ListDir(t, tree.Root()); len(names) != 0 {
			t.Errorf("repository holds %v, want nothing", names)
		}
	})

	t.Run("a cancelled context writes nothing", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := tree.CreateFile(cctx, nil, "a.txt", strings.NewReader("data"), false); !errors.Is(err, context.Canceled) {
			t.Errorf("CreateFile() error = %v, want context.Canceled", err)
		}
		testutil.AssertNotExists(t, filepath.Join(tree.Root(), "a.txt"))
	})
}

func TestTree_NilPaths(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 1000)

	if rel, err := tree.RelativeFilePath(ctx, nil); err != nil || rel != "" {
		t.Errorf("RelativeFilePath(nil) = %q, %v; want empty", rel, err)
	}
	if real, err := tree.FileRealPath(ctx, nil); err != nil || real != "" {
		t.Errorf("FileRealPath(nil) = %q, %v; want empty", real, err)
	}
	if rel, err := tree.RelativeDirectoryPath(ctx, nil); err != nil || rel != "" {
		t.Errorf("RelativeDirectoryPath(nil) = %q, %v; want empty", rel, err)
	}
}

func TestTree_ReadmeCollision(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 1000)

	first, err := tree.CreateFile(ctx, nil, "readme.txt", strings.NewReader(strings.Repeat("r", 500)), false)
	if err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}

	second, err := tree.Upload(ctx, nil, "readme.txt", strings.NewReader(strings.Repeat("s", 320)), true)
	if err != nil {
		t.Fatalf("Upload(force) error = %v", err)
	}
	if second.Name != "readme.1.txt" {
		t.Errorf("Name = %q, want readme.1.txt", second.Name)
	}

	a := mustFileByPath(t, tree, "readme.txt")
	b := mustFileByPath(t, tree, "readme.1.txt")
	if a.ID != first.ID || a.Size != 500 {
		t.Errorf("readme.txt = {ID: %d, Size: %d}, want {ID: %d, Size: 500}", a.ID, a.Size, first.ID)
	}
	if b.ID != second.ID || b.Size != 320 {
		t.Errorf("readme.1.txt = {ID: %d, Size: %d}, want {ID: %d, Size: 320}", b.ID, b.Size, second.ID)
	}
	assertFileOnDisk(t, tree, a, "readme.txt", strings.Repeat("r", 500))
	assertFileOnDisk(t, tree, b, "readme.1.txt", strings.Repeat("s", 320))
	assertSiblingsUnique(t, e.db, tree)
}

// cancellingReader cancels its context after handing out the first chunk.
type cancellingReader struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c *cancellingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p[:min(len(p), 4)])
	c.cancel()
	return n, err
}

func TestTree_Upload(t *testing.T) {
	ctx := context.Background()

	cacheEntries := func(t *testing.T, e *testEnv) []string {
		t.Helper()
		dir := filepath.Join(e.env.WorkingDir, "cache")
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil
		}
		return testutil.ListDir(t, dir)
	}

	t.Run("imports and removes the temporary file", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		docs := mustCreateDirectory(t, tree, nil, "docs")

		f, err := tree.Upload(ctx, docs, "photo.jpg", strings.NewReader("jpeg bytes"), false)
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if f.Size != 10 {
			t.Errorf("Size = %d, want 10", f.Size)
		}
		assertFileOnDisk(t, tree, f, "docs/photo.jpg", "jpeg bytes")
		if names := cacheEntries(t, e); len(names) != 0 {
			t.Errorf("cache holds %v, want nothing", names)
		}
	})

	t.Run("oversized upload is rejected and cleaned up", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 8)

		_, err := tree.Upload(ctx, nil, "big.bin", strings.NewReader("123456789"), false)
		if !errors.Is(err, hoard.ErrQuotaExceeded) {
			t.Fatalf("Upload() error = %v, want ErrQuotaExceeded", err)
		}
		if names := cacheEntries(t, e); len(names) != 0 {
			t.Errorf("cache holds %v, want nothing", names)
		}
		if names := testutil.ListDir(t, tree.Root()); len(names) != 0 {
			t.Errorf("repository holds %v, want nothing", names)
		}
	})

	t.Run("client disconnect is cleaned up", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		r := &cancellingReader{r: strings.NewReader("a long upload body"), cancel: cancel}
		_, err := tree.Upload(cctx, nil, "partial.txt", r, false)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Upload() error = %v, want context.Canceled", err)
		}
		if names := cacheEntries(t, e); len(names) != 0 {
			t.Errorf("cache holds %v, want nothing", names)
		}
		testutil.AssertNotExists(t, filepath.Join(tree.Root(), "partial.txt"))
	})
}

func TestTree_ImportFile(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 10)

	tempPath := filepath.Join(t.TempDir(), "upload")
	testutil.WriteFile(t, tempPath, "0123456789")

	f, err := tree.ImportFile(ctx, nil, "digits.txt", tempPath, false)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if f.Size != 10 {
		t.Errorf("Size = %d, want 10", f.Size)
	}
	testutil.AssertExists(t, tempPath)

	_, err = tree.ImportFile(ctx, nil, "again.txt", tempPath, false)
	if !errors.Is(err, hoard.ErrQuotaExceeded) {
		t.Errorf("ImportFile() over capacity error = %v, want ErrQuotaExceeded", err)
	}
	_, err = tree.ImportFile(ctx, nil, "missing.txt", filepath.Join(t.TempDir(), "nope"), false)
	if err == nil {
		t.Error("ImportFile() of a missing upload expected error")
	}
}

func TestTree_RenameFile(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 1000)
	docs := mustCreateDirectory(t, tree, nil, "docs")
	f := mustCreateFile(t, tree, docs, "a.txt", "aaa")
	mustCreateFile(t, tree, docs, "b.txt", "bbb")

	if err := tree.RenameFile(ctx, f, "b.txt", false); !errors.Is(err, hoard.ErrAlreadyExists) {
		t.Fatalf("RenameFile() error = %v, want ErrAlreadyExists", err)
	}
	if err := tree.RenameFile(ctx, f, "b.txt", true); err != nil {
		t.Fatalf("RenameFile(force) error = %v", err)
	}
	if f.Name != "b.1.txt" {
		t.Errorf("Name = %q, want b.1.txt", f.Name)
	}
	assertFileOnDisk(t, tree, f, "docs/b.1.txt", "aaa")
	testutil.AssertNotExists(t, filepath.Join(tree.Root(), "docs", "a.txt"))

	if err := tree.RenameFile(ctx, f, "../escape.txt", false); !errors.Is(err, hoard.ErrInvalidPath) {
		t.Errorf("RenameFile(../escape.txt) error = %v, want ErrInvalidPath", err)
	}
	assertSiblingsUnique(t, e.db, tree)
}

func TestTree_MoveFile(t *testing.T) {
	ctx := context.Background()

	t.Run("moves between directories", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		docs := mustCreateDirectory(t, tree, nil, "docs")
		archive := mustCreateDirectory(t, tree, nil, "archive")
		f := mustCreateFile(t, tree, docs, "a.txt", "aaa")

		if err := tree.MoveFile(ctx, f, archive, false); err != nil {
			t.Fatalf("MoveFile() error = %v", err)
		}
		if !f.ParentID.Valid || f.ParentID.Int64 != archive.ID {
			t.Errorf("ParentID = %v, want %d", f.ParentID, archive.ID)
		}
		assertFileOnDisk(t, tree, f, "archive/a.txt", "aaa")
		testutil.AssertNotExists(t, filepath.Join(tree.Root(), "docs", "a.txt"))

		if err := tree.MoveFile(ctx, f, nil, false); err != nil {
			t.Fatalf("MoveFile(root) error = %v", err)
		}
		assertFileOnDisk(t, tree, f, "a.txt", "aaa")
	})

	t.Run("force renames on collision", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		docs := mustCreateDirectory(t, tree, nil, "docs")
		f := mustCreateFile(t, tree, docs, "a.txt", "moved")
		mustCreateFile(t, tree, nil, "a.txt", "stays")

		if err := tree.MoveFile(ctx, f, nil, false); !errors.Is(err, hoard.ErrAlreadyExists) {
			t.Fatalf("MoveFile() error = %v, want ErrAlreadyExists", err)
		}
		if err := tree.MoveFile(ctx, f, nil, true); err != nil {
			t.Fatalf("MoveFile(force) error = %v", err)
		}
		if f.Name != "a.1.txt" {
			t.Errorf("Name = %q, want a.1.txt", f.Name)
		}
		assertFileOnDisk(t, tree, f, "a.1.txt", "moved")
		assertFileOnDisk(t, tree, mustFileByPath(t, tree, "a.txt"), "a.txt", "stays")
		assertSiblingsUnique(t, e.db, tree)
	})

	t.Run("moves back on disk when the row update fails", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		mustCreateDirectory(t, tree, nil, "docs")
		mustCreateFile(t, tree, nil, "a.txt", "aaa")
		failing := e.reopen(t, tree, &failingQuerier{
			Querier:            e.db.Queries(),
			updateFileLocation: errors.New("disk I/O error"),
		})

		f := mustFileByPath(t, failing, "a.txt")
		if err := failing.MoveFile(ctx, f, mustDirectoryByPath(t, failing, "docs"), false); err == nil {
			t.Fatal("MoveFile() expected error")
		}
		testutil.AssertExists(t, filepath.Join(tree.Root(), "a.txt"))
		testutil.AssertNotExists(t, filepath.Join(tree.Root(), "docs", "a.txt"))
	})
}

func TestTree_CopyFile(t *testing.T) {
	ctx := context.Background()

	t.Run("copying twice with force keeps both copies", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		src := mustCreateFile(t, tree, nil, "report.txt", "quarterly")
		archive := mustCreateDirectory(t, tree, nil, "archive")

		first, err := tree.CopyFile(ctx, src, archive, true)
		if err != nil {
			t.Fatalf("first CopyFile() error = %v", err)
		}
		second, err := tree.CopyFile(ctx, src, archive, true)
		if err != nil {
			t.Fatalf("second CopyFile() error = %v", err)
		}
		if first.Name != "report.txt" || second.Name != "report.1.txt" {
			t.Errorf("names = %q, %q; want report.txt, report.1.txt", first.Name, second.Name)
		}
		if first.ID == second.ID || first.ID == src.ID {
			t.Error("copies share a row")
		}
		for _, f := range []string{"archive/report.txt", "archive/report.1.txt", "report.txt"} {
			copied := mustFileByPath(t, tree, f)
			if copied.Size != 9 {
				t.Errorf("%s Size = %d, want 9", f, copied.Size)
			}
			assertFileOnDisk(t, tree, copied, f, "quarterly")
		}
		assertSiblingsUnique(t, e.db, tree)
	})

	t.Run("carries the public flag", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 1000)
		src := mustCreateFile(t, tree, nil, "a.txt", "aaa")
		if err := tree.SetFilePublic(ctx, src, true); err != nil {
			t.Fatalf("SetFilePublic() error = %v", err)
		}

		copied, err := tree.CopyFile(ctx, src, nil, true)
		if err != nil {
			t.Fatalf("CopyFile() error = %v", err)
		}
		if !copied.IsPublic {
			t.Error("copy is not public")
		}
	})

	t.Run("counts against the capacity", func(t *testing.T) {
		e := newTestEnv(t)
		tree := e.newTree(t, "alice", 10)
		src := mustCreateFile(t, tree, nil, "a.txt", "123456")

		_, err := tree.CopyFile(ctx, src, nil, true)
		if !errors.Is(err, hoard.ErrQuotaExceeded) {
			t.Fatalf("CopyFile() error = %v, want ErrQuotaExceeded", err)
		}
		if names := testutil.ListDir(t, tree.Root()); len(names) != 1 {
			t.Errorf("repository holds %v, want only a.txt", names)
		}
	})
}

func TestTree_RemoveFile(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	tree := e.newTree(t, "alice", 1000)
	f := mustCreateFile(t, tree, nil, "a.txt", "aaa")
	mustCreateFile(t, tree, nil, "b.txt", "bbb")

	if err := tree.RemoveFile(ctx, f); err != nil {
		t.Fatalf("RemoveFile() error = %v", err)
	}
	testutil.AssertNotExists(t, filepath.Join(tree.Root(), "a.txt"))
	if got, err := tree.FileByPath(ctx, "a.txt"); err != nil || got != nil {
		t.Errorf("FileByPath(a.txt) = %v, %v; want nil, nil", got, err)
	}
	used, err := tree.UsedBytes(ctx)
	if err != nil {
		t.Fatalf("UsedBytes() error = %v", err)
	}
	if used != 3 {
		t.Errorf("UsedBytes() = %d, want 3", used)
	}

	if err := tree.RemoveFile(ctx, f); !errors.Is(err, hoard.ErrNotFound) {
		t.Errorf("second RemoveFile() error = %v, want ErrNotFound", err)
	}
	if _, err := tree.OpenFile(ctx, f); !errors.Is(err, hoard.ErrNotFound) {
		t.Errorf("OpenFile(removed) error = %v, want ErrNotFound", err)
	}
}
