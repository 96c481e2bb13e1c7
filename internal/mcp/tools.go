package mcp

import (
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

// LanguagesInput defines the input schema for navigator_languages (no parameters).
type LanguagesInput struct{}

// LanguagesOutput defines the output schema for navigator_languages.
type LanguagesOutput struct {
	Bundle    string         `json:"bundle" jsonschema:"bundle identifier of the artifact"`
	Version   int            `json:"version" jsonschema:"artifact format version"`
	Languages []LanguageInfo `json:"languages" jsonschema:"language trees in the artifact"`
}

// LanguageInfo describes one language tree.
type LanguageInfo struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	Depth int    `json:"depth"`
}

// ChildrenInput defines the input schema for navigator_children.
type ChildrenInput struct {
	Language string `json:"language" jsonschema:"language tree to query, e.g. swift"`
	Path     string `json:"path,omitempty" jsonschema:"path of the parent item; defaults to the root /"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of children, default 100"`
}

// ChildrenOutput defines the output schema for navigator_children.
type ChildrenOutput struct {
	Parent    ItemOutput   `json:"parent"`
	Children  []ItemOutput `json:"children"`
	Truncated bool         `json:"truncated,omitempty" jsonschema:"true when more children exist than the limit"`
}

// LookupInput defines the input schema for navigator_lookup.
type LookupInput struct {
	Language string `json:"language" jsonschema:"language tree to query"`
	Path     string `json:"path" jsonschema:"path of the item, e.g. /documentation/kit/button"`
}

// LookupOutput defines the output schema for navigator_lookup.
type LookupOutput struct {
	Item ItemOutput `json:"item"`
	// Breadcrumbs run from the root down to the item's parent.
	Breadcrumbs []ItemOutput `json:"breadcrumbs"`
	// Variants maps other languages to the path of the same topic there.
	Variants map[string]string `json:"variants,omitempty"`
}

// DumpInput defines the input schema for navigator_dump.
type DumpInput struct {
	Language string `json:"language,omitempty" jsonschema:"language tree to dump; all languages when empty"`
	Path     string `json:"path,omitempty" jsonschema:"subtree root path; requires language"`
}

// DumpOutput defines the output schema for navigator_dump.
type DumpOutput struct {
	Text      string `json:"text" jsonschema:"one line per item, Title [kind], two spaces per depth"`
	Truncated bool   `json:"truncated,omitempty"`
}

// ItemOutput is the wire form of a navigator item.
type ItemOutput struct {
	ID         uint32   `json:"id"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	Reference  string   `json:"reference,omitempty"`
	Kind       string   `json:"kind"`
	Language   string   `json:"language"`
	Platforms  []string `json:"platforms,omitempty"`
	ChildCount int      `json:"child_count"`
}

func toItemOutput(it navigator.Item) ItemOutput {
	out := ItemOutput{
		ID:         it.ID,
		Title:      it.Title,
		Path:       it.Path,
		Reference:  it.Reference,
		Kind:       it.Kind.String(),
		Language:   it.Language,
		ChildCount: it.ChildCount,
	}
	for _, p := range it.Platforms {
		out.Platforms = append(out.Platforms, p.String())
	}
	return out
}

func clampLimit(limit, defaultVal, minVal, maxVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	return max(minVal, min(limit, maxVal))
}
