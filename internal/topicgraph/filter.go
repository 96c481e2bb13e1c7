package topicgraph

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which files under the input root are topic files.
// Patterns are doublestar globs matched against slash-separated paths
// relative to the root.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter creates a filter. An empty include list matches nothing.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{include: include, exclude: exclude}
}

// Match reports whether the relative path rel is a topic file.
func (f *Filter) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	return matchAny(f.include, rel) && !matchAny(f.exclude, rel)
}

// dirProbe stands in for "any file" when testing whether an exclude pattern
// covers a whole directory.
const dirProbe = "\x00probe"

// SkipDir reports whether a whole directory is excluded so the walk can prune
// it, as a trailing "/**" pattern expresses.
func (f *Filter) SkipDir(rel string) bool {
	return matchAny(f.exclude, filepath.ToSlash(rel)+"/"+dirProbe)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// Patterns were validated at config load; a bad one simply never matches.
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
