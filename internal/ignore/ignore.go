// Package ignore decides which tracked paths are left alone.
//
// Patterns use doublestar glob syntax ("**" crosses directory
// boundaries). A pattern without a slash is matched against a single
// path element; a pattern with a slash is matched against the whole
// slash-separated path relative to the repository root.
package ignore

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher is an immutable ignore predicate.
type Matcher struct {
	files []string
	dirs  []string
}

// New compiles file and directory patterns. File patterns are tested
// against the file name (or whole path); directory patterns against every
// directory containing the file.
func New(files, dirs []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range files {
		p, err := clean(p)
		if err != nil {
			return nil, err
		}
		if p != "" {
			m.files = append(m.files, p)
		}
	}
	for _, p := range dirs {
		p, err := clean(p)
		if err != nil {
			return nil, err
		}
		if p != "" {
			m.dirs = append(m.dirs, strings.TrimSuffix(p, "/"))
		}
	}
	return m, nil
}

func clean(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", nil
	}
	if !doublestar.ValidatePattern(p) {
		return "", fmt.Errorf("invalid ignore pattern %q", p)
	}
	return p, nil
}

// Match reports whether p, a slash-separated path relative to the
// repository root, is ignored. A nil Matcher ignores nothing.
func (m *Matcher) Match(p string) bool {
	if m == nil {
		return false
	}
	p = strings.TrimPrefix(p, "./")
	base := path.Base(p)

	for _, pat := range m.files {
		if match(pat, p, base) {
			return true
		}
	}

	if len(m.dirs) == 0 {
		return false
	}
	dir := path.Dir(p)
	for dir != "." && dir != "/" && dir != "" {
		name := path.Base(dir)
		for _, pat := range m.dirs {
			if match(pat, dir, name) {
				return true
			}
		}
		dir = path.Dir(dir)
	}
	return false
}

// Patterns returns the file and directory patterns, for logging.
func (m *Matcher) Patterns() (files, dirs []string) {
	if m == nil {
		return nil, nil
	}
	return append([]string(nil), m.files...), append([]string(nil), m.dirs...)
}

func match(pattern, full, name string) bool {
	target := name
	if strings.Contains(pattern, "/") {
		target = full
	}
	ok, err := doublestar.Match(pattern, target)
	return err == nil && ok
}
