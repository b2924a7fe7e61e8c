package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNextFreeName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		request  string
		isDir    bool
		want     string
	}{
		{name: "free name", request: "readme.txt", want: "readme.txt"},
		{name: "file collision", existing: []string{"readme.txt"}, request: "readme.txt", want: "readme.1.txt"},
		{name: "second collision", existing: []string{"readme.txt", "readme.1.txt"}, request: "readme.txt", want: "readme.2.txt"},
		{name: "counter replaced", existing: []string{"readme.1.txt"}, request: "readme.1.txt", want: "readme.2.txt"},
		{name: "double extension", existing: []string{"archive.tar.gz"}, request: "archive.tar.gz", want: "archive.tar.1.gz"},
		{name: "cyrillic extension", existing: []string{"файл.тхт"}, request: "файл.тхт", want: "файл.1.тхт"},
		{name: "accented extension", existing: []string{"photo.jpé", "photo.1.jpé"}, request: "photo.1.jpé", want: "photo.2.jpé"},
		{name: "no extension", existing: []string{"Makefile"}, request: "Makefile", want: "Makefile.1"},
		{name: "dotfile", existing: []string{".bashrc"}, request: ".bashrc", want: ".bashrc.1"},
		{name: "directory", existing: []string{"docs/"}, request: "docs", isDir: true, want: "docs.1"},
		{name: "directory with dots", existing: []string{"v1.2/"}, request: "v1.2", isDir: true, want: "v1.2.1"},
		{name: "directory second collision", existing: []string{"docs/", "docs.1/"}, request: "docs", isDir: true, want: "docs.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, e := range tt.existing {
				p := filepath.Join(dir, e)
				var err error
				if e[len(e)-1] == '/' {
					err = os.Mkdir(p, 0o755)
				} else {
					err = os.WriteFile(p, []byte("x"), 0o644)
				}
				if err != nil {
					t.Fatalf("setup %s: %v", e, err)
				}
			}

			got, err := NextFreeName(dir, tt.request, tt.isDir)
			if err != nil {
				t.Fatalf("NextFreeName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NextFreeName(%q) = %q, want %q", tt.request, got, tt.want)
			}
		})
	}
}
