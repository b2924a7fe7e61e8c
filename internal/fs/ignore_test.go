package fs

import "testing"

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank entries, comments and bad patterns", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "[", ".DS_Store"})
		if len(m.patterns) != len(defaultIgnorePatterns)+1 {
			t.Fatalf("expected %d patterns, got %d", len(defaultIgnorePatterns)+1, len(m.patterns))
		}
		if last := m.patterns[len(m.patterns)-1]; last.pattern != ".DS_Store" {
			t.Errorf("expected .DS_Store, got %s", last.pattern)
		}
	})

	t.Run("classifies path vs name patterns", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.log", "/build/output/"})
		n := len(defaultIgnorePatterns)
		if m.patterns[n].matchPath {
			t.Error("*.log should not be a path pattern")
		}
		if !m.patterns[n+1].matchPath || m.patterns[n+1].pattern != "build/output" {
			t.Errorf("pattern = %+v, want path pattern build/output", m.patterns[n+1])
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{"temp files always", nil, TempPrefix + "abc", true},
		{"temp files in subdirectory", nil, "docs/" + TempPrefix + "abc", true},
		{"no patterns matches regular names", nil, "anything.txt", false},
		{"name glob in root", []string{"*.log"}, "app.log", true},
		{"name glob in subdirectory", []string{"*.log"}, "sub/app.log", true},
		{"name glob other extension", []string{"*.log"}, "app.txt", false},
		{"exact name in subdirectory", []string{".DS_Store"}, "sub/.DS_Store", true},
		{"path pattern exact", []string{"build/output"}, "build/output", true},
		{"path pattern other parent", []string{"build/output"}, "src/output", false},
		{"path pattern with glob", []string{"build/*.o"}, "build/main.o", true},
		{"question mark", []string{"?.txt"}, "a.txt", true},
		{"question mark is one char", []string{"?.txt"}, "ab.txt", false},
		{"character class", []string{"*.[oa]"}, "main.o", true},
		{"root never ignored", []string{"*"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
