package compare

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludedExtensions are the GoPro thumbnail and low-resolution
// proxy files that never get copied to the backup drive
var DefaultExcludedExtensions = []string{".THM", ".LRV"}

// Predicate reports whether a source file must be left out of the comparison
type Predicate func(name string) bool

// Filter excludes source files by extension and by glob pattern.
// All matching is case-insensitive.
type Filter struct {
	extensions map[string]struct{}
	patterns   []glob.Glob
}

// NewFilter builds a filter from extensions (with or without the leading dot)
// and glob patterns matched against the bare file name.
// Patterns support:
//   - Simple globs: *.tmp, GX01*
//   - Character classes: GOPR[0-9]*.JPG
//   - Alternatives: *.{thm,lrv}
func NewFilter(extensions []string, patterns []string) (*Filter, error) {
	f := &Filter{extensions: make(map[string]struct{}, len(extensions))}

	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[nameKey(ext)] = struct{}{}
	}

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		g, err := glob.Compile(nameKey(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.patterns = append(f.patterns, g)
	}

	return f, nil
}

// DefaultFilter returns the filter for the fixed GoPro exclusion set
func DefaultFilter() *Filter {
	f, _ := NewFilter(DefaultExcludedExtensions, nil)
	return f
}

// Excludes reports whether name must be dropped from the source listing
func (f *Filter) Excludes(name string) bool {
	if f == nil {
		return false
	}

	key := nameKey(filepath.Base(name))
	if _, ok := f.extensions[filepath.Ext(key)]; ok {
		return true
	}

	for _, g := range f.patterns {
		if g.Match(key) {
			return true
		}
	}

	return false
}

// Predicate returns the filter as a plain function
func (f *Filter) Predicate() Predicate {
	return f.Excludes
}

// Empty reports whether the filter can never exclude anything
func (f *Filter) Empty() bool {
	return f == nil || (len(f.extensions) == 0 && len(f.patterns) == 0)
}

// nameKey folds a file name for ordinal, case-insensitive comparison by
// mapping every rune to its simple uppercase form. Upper-casing rather than
// lower-casing keeps 'ſ' equal to 's' and the Kelvin sign distinct from 'k',
// the way Windows and exFAT compare names.
func nameKey(name string) string {
	return strings.ToUpper(name)
}
