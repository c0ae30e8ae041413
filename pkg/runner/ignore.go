package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher matches slash-separated relative paths against ignore patterns.
// Patterns without a slash also match the base name, so "CHANGELOG.md"
// ignores the file in every directory.
type Matcher struct {
	full []glob.Glob
	base []glob.Glob
}

// CompileIgnore compiles ignore patterns.
func CompileIgnore(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(strings.TrimPrefix(pattern, "./"))

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}

		if strings.Contains(pattern, "/") {
			m.full = append(m.full, g)
		} else {
			m.base = append(m.base, g)
		}
	}
	return m, nil
}

// Match reports whether the relative path rel is ignored.
func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range m.full {
		if g.Match(rel) {
			return true
		}
	}
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}
	for _, g := range m.base {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// MatchDir reports whether everything under the directory rel is ignored,
// so a walk can skip it. "vendor/**" prunes "vendor".
func (m *Matcher) MatchDir(rel string) bool {
	return m.Match(rel) || m.Match(filepath.ToSlash(rel)+"/")
}
