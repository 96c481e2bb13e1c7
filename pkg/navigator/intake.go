package navigator

import (
	"cmp"
	"slices"
	"strings"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// entry is one (reference, language) view of a topic record, the unit the
// intake normalizes, deduplicates and places.
type entry struct {
	ref       string
	lang      string
	title     string
	path      string
	kind      Kind
	platforms []Platform
	curation  string

	// Resolved by resolveParents.
	parent    *entry
	underRoot bool
}

// orphan reports whether no parent rule placed the entry.
func (e *entry) orphan() bool {
	return e.parent == nil && !e.underRoot
}

// languageGraph holds the retained entries of one language in canonical order.
type languageGraph struct {
	name    string
	entries []*entry
	byRef   map[string]*entry
	byPath  map[string]*entry
}

type intakeResult struct {
	records   int
	expanded  int
	languages []*languageGraph // sorted by name
}

// intake expands records into per-language entries, normalizes and validates
// them, drops duplicates in canonical order and resolves each entry's parent.
// Orphans stay in the graph with no parent; the builder reports them once it
// knows which entries are cut off from their root.
func intake(records []TopicRecord, edges CurationEdges, rootPrefixes []string, diags *diagnostics) *intakeResult {
	res := &intakeResult{records: len(records)}

	all := make([]*entry, 0, len(records))
	for i := range records {
		all = expandRecord(&records[i], all, diags)
	}
	res.expanded = len(all)

	slices.SortFunc(all, compareEntries)

	graphs := make(map[string]*languageGraph)
	var prev *entry
	for _, e := range all {
		if prev != nil && prev.ref == e.ref && prev.lang == e.lang {
			diags.add(naverrors.ErrCodeDuplicateRecord, *e,
				"duplicate record for %s in %s; kept path %s", e.ref, e.lang, prev.path)
			continue
		}
		prev = e

		g := graphs[e.lang]
		if g == nil {
			g = &languageGraph{
				name:   e.lang,
				byRef:  make(map[string]*entry),
				byPath: make(map[string]*entry),
			}
			graphs[e.lang] = g
		}
		if owner, taken := g.byPath[e.path]; taken {
			diags.add(naverrors.ErrCodeDuplicatePath, *e,
				"path %s already used by %s", e.path, owner.ref)
			continue
		}
		g.byPath[e.path] = e
		g.byRef[e.ref] = e
		g.entries = append(g.entries, e)
	}

	parentsOf := invertEdges(edges)
	prefixes := make(map[string]struct{}, len(rootPrefixes))
	for _, p := range rootPrefixes {
		prefixes[normalizePath(p)] = struct{}{}
	}

	for _, g := range graphs {
		resolveParents(g, parentsOf, prefixes, diags)
		res.languages = append(res.languages, g)
	}
	slices.SortFunc(res.languages, func(a, b *languageGraph) int {
		return cmp.Compare(a.name, b.name)
	})
	return res
}

func expandRecord(r *TopicRecord, out []*entry, diags *diagnostics) []*entry {
	base := entry{
		ref:       strings.TrimSpace(r.Reference),
		lang:      strings.TrimSpace(r.Language),
		title:     strings.TrimSpace(r.Title),
		path:      normalizePath(r.Path),
		kind:      r.Kind,
		platforms: canonicalPlatforms(r.Platforms),
		curation:  strings.TrimSpace(r.CurationParent),
	}

	if base.kind == KindRoot || !base.kind.Valid() {
		diags.add(naverrors.ErrCodeInvalidKind, base, "kind %s is not allowed on a topic record", base.kind)
		return out
	}

	views := make([]entry, 0, 1+len(r.Variants))
	views = append(views, base)
	for _, v := range r.Variants {
		e := base
		e.lang = strings.TrimSpace(v.Language)
		if t := strings.TrimSpace(v.Title); t != "" {
			e.title = t
		}
		if p := normalizePath(v.Path); p != "" {
			e.path = p
		}
		views = append(views, e)
	}

	for _, e := range views {
		switch {
		case e.ref == "":
			diags.add(naverrors.ErrCodeInvalidRecord, e, "record has no reference")
			continue
		case e.lang == "":
			diags.add(naverrors.ErrCodeInvalidRecord, e, "record has no language")
			continue
		case e.path == "":
			diags.add(naverrors.ErrCodeInvalidRecord, e, "record has no path")
			continue
		}
		if e.title == "" {
			e.title = lastSegment(e.path)
		}
		out = append(out, &e)
	}
	return out
}

// resolveParents applies, per language: explicit curation edges, then the
// record's own curation parent, then the default path hierarchy.
func resolveParents(g *languageGraph, parentsOf map[string][]string, rootPrefixes map[string]struct{}, diags *diagnostics) {
	for _, e := range g.entries {
		var present []string
		for _, p := range parentsOf[e.ref] {
			if _, ok := g.byRef[p]; ok {
				present = append(present, p)
			}
		}
		if len(present) > 0 {
			// parentsOf is sorted, so present[0] is the smallest.
			e.parent = g.byRef[present[0]]
			if len(present) > 1 {
				diags.add(naverrors.ErrCodeAmbiguousCuration, *e,
					"curated by %s; using %s", strings.Join(present, ", "), present[0])
			}
			continue
		}

		if e.curation != "" {
			if p, ok := g.byRef[e.curation]; ok {
				e.parent = p
				continue
			}
		}

		parentPath := parentPathOf(e.path)
		if _, isPrefix := rootPrefixes[parentPath]; parentPath == "" || isPrefix {
			e.underRoot = true
			continue
		}
		if p, ok := g.byPath[parentPath]; ok {
			e.parent = p
		}
	}
}

// invertEdges maps each child reference to its sorted, distinct curating parents.
func invertEdges(edges CurationEdges) map[string][]string {
	parentsOf := make(map[string][]string)
	for parent, children := range edges {
		parent = strings.TrimSpace(parent)
		for _, child := range children {
			child = strings.TrimSpace(child)
			parentsOf[child] = append(parentsOf[child], parent)
		}
	}
	for child, ps := range parentsOf {
		slices.Sort(ps)
		parentsOf[child] = slices.Compact(ps)
	}
	return parentsOf
}

func compareEntries(a, b *entry) int {
	return cmp.Or(
		cmp.Compare(a.ref, b.ref),
		cmp.Compare(a.lang, b.lang),
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.title, b.title),
		cmp.Compare(a.kind, b.kind),
		slices.CompareFunc(a.platforms, b.platforms, comparePlatforms),
		cmp.Compare(a.curation, b.curation),
	)
}

func canonicalPlatforms(ps []Platform) []Platform {
	if len(ps) == 0 {
		return nil
	}
	out := make([]Platform, 0, len(ps))
	for _, p := range ps {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name != "" {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, comparePlatforms)
	return slices.CompactFunc(out, func(a, b Platform) bool {
		return comparePlatforms(a, b) == 0
	})
}

// normalizePath trims whitespace and trailing slashes. "/" normalizes to "".
func normalizePath(p string) string {
	return strings.TrimRight(strings.TrimSpace(p), "/")
}

func parentPathOf(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i <= 0 {
		return ""
	}
	return p[:i]
}

func lastSegment(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}
