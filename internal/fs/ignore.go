package fs

import (
	"path"
	"strings"
)

// defaultIgnorePatterns are always applied: in-flight writes are never
// part of a repository.
var defaultIgnorePatterns = []string{TempPrefix + "*"}

type ignorePattern struct {
	pattern   string
	matchPath bool // match the whole logical path instead of the last name
}

// IgnoreMatcher decides which physical entries of a repository directory
// are not expected to have rows, such as ".DS_Store" or "lost+found".
// Patterns without '/' match the last name of a path; patterns with '/'
// match the whole logical path from the repository root.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher builds a matcher from raw patterns plus the defaults.
// Blank entries and entries starting with '#' are skipped. Malformed
// patterns are dropped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range append(append([]string{}, defaultIgnorePatterns...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if _, err := path.Match(raw, ""); err != nil {
			continue
		}
		m.patterns = append(m.patterns, ignorePattern{
			pattern:   strings.Trim(raw, "/"),
			matchPath: strings.Contains(strings.Trim(raw, "/"), "/"),
		})
	}
	return m
}

// Match reports whether the logical path p is ignored.
func (m *IgnoreMatcher) Match(p string) bool {
	if p == "" {
		return false
	}
	name := path.Base(p)
	for _, pt := range m.patterns {
		subject := name
		if pt.matchPath {
			subject = p
		}
		if matched, _ := path.Match(pt.pattern, subject); matched {
			return true
		}
	}
	return false
}
