package navigator

import (
	"strings"
)

// DumpTree renders the subtree at id, one item per line as "Title [kind]",
// indented two spaces per level. The output depends only on titles, kinds
// and order, never on IDs or pool layout, so equal trees dump identically.
func (a *Artifact) DumpTree(id uint32) string {
	var sb strings.Builder
	a.dumpTree(&sb, id)
	return sb.String()
}

// Dump renders every language tree, each preceded by "# language".
func (a *Artifact) Dump() string {
	var sb strings.Builder
	for i, l := range a.languages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("# ")
		sb.WriteString(a.strings[l.Name])
		sb.WriteByte('\n')
		a.dumpTree(&sb, l.First)
	}
	return sb.String()
}

func (a *Artifact) dumpTree(sb *strings.Builder, id uint32) {
	a.walk(id, func(cur uint32, depth int) bool {
		rec := a.items[cur]
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(a.strings[rec.Title])
		sb.WriteString(" [")
		sb.WriteString(rec.Kind.String())
		sb.WriteString("]\n")
		return true
	})
}
