package fs

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"arcutil/internal/domain"
)

// Filter selects walk entries by doublestar patterns matched against their
// relative paths.
type Filter struct {
	includes []string
	excludes []string
}

func NewFilter(includes, excludes []string) *Filter {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Filter{
		includes: includes,
		excludes: excludes,
	}
}

// Apply returns the entries that survive the filter, in their original
// order. An excluded directory prunes its whole subtree. A kept directory
// is one that is included itself or that has a kept descendant.
func (f *Filter) Apply(entries []domain.WalkEntry) []domain.WalkEntry {
	var pruned []string
	keep := make([]bool, len(entries))
	keptDirs := make(map[string]bool)

	for i, e := range entries {
		if underAny(e.RelativePath, pruned) {
			continue
		}
		if e.IsDir {
			if f.shouldExclude(e.RelativePath + "/") || f.shouldExclude(e.RelativePath) {
				pruned = append(pruned, e.RelativePath+"/")
				continue
			}
			if f.shouldInclude(e.RelativePath) {
				keep[i] = true
				keptDirs[e.RelativePath] = true
			}
			continue
		}
		if f.shouldInclude(e.RelativePath) && !f.shouldExclude(e.RelativePath) {
			keep[i] = true
			for dir := path.Dir(e.RelativePath); dir != "." && dir != "/" && dir != ".."; dir = path.Dir(dir) {
				keptDirs[dir] = true
			}
		}
	}

	out := make([]domain.WalkEntry, 0, len(entries))
	for i, e := range entries {
		if keep[i] || (e.IsDir && keptDirs[e.RelativePath] && !underAny(e.RelativePath, pruned)) {
			out = append(out, e)
		}
	}
	return out
}

// Match reports whether a single file path passes the filter.
func (f *Filter) Match(rel string) bool {
	return f.shouldInclude(rel) && !f.shouldExclude(rel)
}

func (f *Filter) shouldInclude(path string) bool {
	for _, pattern := range f.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (f *Filter) shouldExclude(path string) bool {
	for _, pattern := range f.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func underAny(rel string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(rel, p) {
			return true
		}
	}
	return false
}
