package navigator

import (
	"math/bits"
	"slices"
)

type languageRecord struct {
	Name  uint32
	First uint32
	Count uint32
}

type itemRecord struct {
	Title        uint32
	Path         uint32
	Reference    uint32
	Kind         Kind
	Language     uint16
	Availability uint64
	Parent       uint32
	ChildOffset  uint32
	ChildCount   uint32
}

// Artifact is a built or decoded navigator index. It is never mutated after
// construction, so any number of goroutines may read it.
type Artifact struct {
	bundle       string
	version      uint16
	flags        uint16
	strings      []string
	platforms    []platformRecord
	languages    []languageRecord
	items        []itemRecord
	children     []uint32
	availability []uint32

	langIndex map[string]int
	// per language: path -> item id, reference string index -> item id
	pathIndex []map[string]uint32
	refIndex  []map[uint32]uint32
}

func (a *Artifact) buildIndexes() {
	a.langIndex = make(map[string]int, len(a.languages))
	a.pathIndex = make([]map[string]uint32, len(a.languages))
	a.refIndex = make([]map[uint32]uint32, len(a.languages))
	for li, l := range a.languages {
		a.langIndex[a.strings[l.Name]] = li
		paths := make(map[string]uint32, l.Count)
		refs := make(map[uint32]uint32, l.Count)
		for id := l.First; id < l.First+l.Count; id++ {
			it := a.items[id]
			paths[a.strings[it.Path]] = id
			if it.Kind != KindRoot {
				refs[it.Reference] = id
			}
		}
		a.pathIndex[li] = paths
		a.refIndex[li] = refs
	}
}

// BundleIdentifier returns the bundle the index was built for.
func (a *Artifact) BundleIdentifier() string {
	return a.bundle
}

// Version returns the format version of the artifact.
func (a *Artifact) Version() uint16 {
	return a.version
}

// MaskMode reports whether availability is stored as platform bitmasks.
func (a *Artifact) MaskMode() bool {
	return a.flags&flagMaskMode != 0
}

// Len returns the number of items across all languages.
func (a *Artifact) Len() int {
	return len(a.items)
}

// Info is header-level statistics about an artifact.
type Info struct {
	Bundle       string         `json:"bundle"`
	Version      uint16         `json:"version"`
	MaskMode     bool           `json:"mask_mode"`
	Languages    []LanguageInfo `json:"languages"`
	Strings      int            `json:"strings"`
	Platforms    int            `json:"platforms"`
	Items        int            `json:"items"`
	Children     int            `json:"children"`
	Availability int            `json:"availability"`
}

// LanguageInfo is the item count of one language tree.
type LanguageInfo struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	Depth int    `json:"depth"`
}

// Info returns header statistics plus per-language tree sizes.
func (a *Artifact) Info() Info {
	info := Info{
		Bundle:       a.bundle,
		Version:      a.version,
		MaskMode:     a.MaskMode(),
		Strings:      len(a.strings),
		Platforms:    len(a.platforms),
		Items:        len(a.items),
		Children:     len(a.children),
		Availability: len(a.availability),
	}
	for _, l := range a.languages {
		info.Languages = append(info.Languages, LanguageInfo{
			Name:  a.strings[l.Name],
			Items: int(l.Count),
			Depth: a.depth(l.First),
		})
	}
	return info
}

// depth is the height of the tree rooted at id, counting the root as 1.
func (a *Artifact) depth(id uint32) int {
	deepest := 0
	a.walk(id, func(_ uint32, d int) bool {
		deepest = max(deepest, d+1)
		return true
	})
	return deepest
}

func (a *Artifact) platformsOf(rec itemRecord) []Platform {
	if a.MaskMode() {
		if rec.Availability == 0 {
			return nil
		}
		out := make([]Platform, 0, bits.OnesCount64(rec.Availability))
		for m := rec.Availability; m != 0; m &= m - 1 {
			out = append(out, resolvePlatform(a.platforms[bits.TrailingZeros64(m)], a.strings))
		}
		// Bit order is pool order; report platforms canonically like list mode.
		slices.SortFunc(out, comparePlatforms)
		return out
	}
	off, n := unpackList(rec.Availability)
	if n == 0 {
		return nil
	}
	out := make([]Platform, 0, n)
	for _, p := range a.availability[off : off+n] {
		out = append(out, resolvePlatform(a.platforms[p], a.strings))
	}
	return out
}
