package navigator

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

const (
	// DefaultMaskLimit is the largest platform pool still encoded as a bitmask.
	DefaultMaskLimit = 64

	noParent = ^uint32(0)
)

// DefaultRootPrefixes are the path prefixes whose direct children hang off
// the language root.
var DefaultRootPrefixes = []string{"/documentation", "/tutorials"}

// Builder turns topic records into an Artifact. A Builder holds only
// options and may be reused and shared; each Build call owns its state.
type Builder struct {
	bundle       string
	rootTitle    string
	rootPrefixes []string
	maskLimit    int
	logger       *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithBundleIdentifier sets the bundle identifier written to the header.
func WithBundleIdentifier(id string) Option {
	return func(b *Builder) {
		b.bundle = id
	}
}

// WithRootTitle sets the title of every language root.
// Defaults to the bundle identifier.
func WithRootTitle(title string) Option {
	return func(b *Builder) {
		b.rootTitle = title
	}
}

// WithRootPrefixes replaces DefaultRootPrefixes.
func WithRootPrefixes(prefixes ...string) Option {
	return func(b *Builder) {
		b.rootPrefixes = slices.Clone(prefixes)
	}
}

// WithMaskLimit sets the platform pool size up to which availability is
// stored as a bitmask. Must be in 1..64.
func WithMaskLimit(n int) Option {
	return func(b *Builder) {
		b.maskLimit = n
	}
}

// WithLogger sets the logger for build stage messages.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		rootPrefixes: slices.Clone(DefaultRootPrefixes),
		maskLimit:    DefaultMaskLimit,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Stats summarizes one build.
type Stats struct {
	Records     int  `json:"records"`
	Entries     int  `json:"entries"`
	Items       int  `json:"items"`
	Languages   int  `json:"languages"`
	Strings     int  `json:"strings"`
	Platforms   int  `json:"platforms"`
	Diagnostics int  `json:"diagnostics"`
	MaskMode    bool `json:"mask_mode"`
}

// BuildResult is a successful build: the artifact plus the recoverable
// problems met on the way.
type BuildResult struct {
	Artifact    *Artifact
	Diagnostics []Diagnostic
	Stats       Stats
}

// Build is shorthand for NewBuilder(opts...).Build(records, edges).
func Build(records []TopicRecord, edges CurationEdges, opts ...Option) (*BuildResult, error) {
	return NewBuilder(opts...).Build(records, edges)
}

// node is a tree vertex during the build. Entries and synthesized roots
// both become nodes.
type node struct {
	e        *entry
	children []*node
	id       uint32
	parent   *node
	reached  bool
	orphaned bool
	// orphanOf is the reference of the orphan that cut this node off.
	orphanOf string
}

// Build runs intake, places every entry, assigns IDs and interns pools.
// A curation cycle fails the build and no artifact is returned.
// The records are not retained.
func (b *Builder) Build(records []TopicRecord, edges CurationEdges) (*BuildResult, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	var diags diagnostics
	in := intake(records, edges, b.rootPrefixes, &diags)
	b.logger.Debug("navigator intake complete",
		slog.Int("records", in.records),
		slog.Int("entries", in.expanded),
		slog.Int("languages", len(in.languages)))

	rootTitle := b.rootTitle
	if rootTitle == "" {
		rootTitle = b.bundle
	}

	trees := make([][]*node, 0, len(in.languages))
	for _, g := range in.languages {
		order, err := b.layoutLanguage(g, rootTitle, &diags)
		if err != nil {
			return nil, err
		}
		trees = append(trees, order)
	}

	art := assemble(b.bundle, in.languages, trees, b.maskLimit)

	res := &BuildResult{
		Artifact:    art,
		Diagnostics: diags.sorted(),
		Stats: Stats{
			Records:   in.records,
			Entries:   in.expanded,
			Items:     len(art.items),
			Languages: len(art.languages),
			Strings:   len(art.strings),
			Platforms: len(art.platforms),
			MaskMode:  art.MaskMode(),
		},
	}
	res.Stats.Diagnostics = len(res.Diagnostics)

	b.logger.Debug("navigator build complete",
		slog.Int("items", res.Stats.Items),
		slog.Int("strings", res.Stats.Strings),
		slog.Int("platforms", res.Stats.Platforms),
		slog.Int("diagnostics", res.Stats.Diagnostics))
	return res, nil
}

func (b *Builder) validate() error {
	if strings.TrimSpace(b.bundle) == "" {
		return naverrors.ValidationError("bundle identifier is required", ErrInvalidOptions).
			WithSuggestion("Pass --bundle or set index.bundle_identifier")
	}
	if b.maskLimit < 1 || b.maskLimit > 64 {
		return naverrors.ValidationError(fmt.Sprintf("mask limit %d out of range 1..64", b.maskLimit), ErrInvalidOptions)
	}
	return nil
}

// layoutLanguage links the language's entries under a synthesized root,
// sorts siblings and returns the nodes in pre-order, root first.
func (b *Builder) layoutLanguage(g *languageGraph, rootTitle string, diags *diagnostics) ([]*node, error) {
	root := &node{e: &entry{lang: g.name, title: rootTitle, path: "/", kind: KindRoot}}

	nodes := make(map[*entry]*node, len(g.entries))
	for _, e := range g.entries {
		nodes[e] = &node{e: e}
	}
	for _, e := range g.entries {
		n := nodes[e]
		switch {
		case e.underRoot:
			n.parent = root
		case e.parent != nil:
			n.parent = nodes[e.parent]
		default:
			continue
		}
		n.parent.children = append(n.parent.children, n)
	}

	order := preorder(root)

	for _, e := range g.entries {
		n := nodes[e]
		if n.reached || n.orphaned {
			continue
		}
		if err := traceUnreached(n, diags); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// preorder sorts siblings and walks the tree iteratively, root first.
func preorder(root *node) []*node {
	var order []*node
	stack := []*node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n.reached = true
		order = append(order, n)

		slices.SortFunc(n.children, compareSiblings)
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return order
}

func compareSiblings(a, b *node) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.e.title), strings.ToLower(b.e.title)),
		cmp.Compare(a.e.kind.Rank(), b.e.kind.Rank()),
		cmp.Compare(a.e.path, b.e.path),
		cmp.Compare(a.e.ref, b.e.ref),
	)
}

// traceUnreached follows parents from an entry the root walk never reached.
// The chain either revisits itself (a curation cycle, fatal) or ends at an
// orphan or at an entry already reported as orphaned.
func traceUnreached(start *node, diags *diagnostics) error {
	var chain []*node
	onChain := make(map[*node]int)

	for n := start; ; n = n.parent {
		if i, seen := onChain[n]; seen {
			return cycleError(chain[i:])
		}
		if n.orphaned {
			markOrphans(chain, n.orphanOf, diags)
			return nil
		}
		onChain[n] = len(chain)
		chain = append(chain, n)
		if n.parent == nil {
			n.orphaned = true
			n.orphanOf = n.e.ref
			diags.add(naverrors.ErrCodeOrphanTopic, *n.e, "no resolvable parent for %s", n.e.path)
			markOrphans(chain[:len(chain)-1], n.e.ref, diags)
			return nil
		}
	}
}

func markOrphans(chain []*node, ancestor string, diags *diagnostics) {
	for _, n := range chain {
		n.orphaned = true
		n.orphanOf = ancestor
		diags.add(naverrors.ErrCodeOrphanTopic, *n.e, "ancestor %s has no resolvable parent", ancestor)
	}
}

// cycleError names the cycle in curation order (parent -> child), starting
// from its smallest reference so the message does not depend on where the
// trace entered the cycle.
func cycleError(cycle []*node) error {
	refs := make([]string, len(cycle))
	for i, n := range cycle {
		refs[len(cycle)-1-i] = n.e.ref
	}
	start := 0
	for i, r := range refs {
		if r < refs[start] {
			start = i
		}
	}
	chain := append(slices.Clone(refs[start:]), refs[:start]...)
	chain = append(chain, chain[0])
	desc := strings.Join(chain, " -> ")

	lang := cycle[0].e.lang
	return naverrors.Newf(naverrors.ErrCodeCurationCycle, "curation cycle in %s: %s", lang, desc).
		WithDetail("language", lang).
		WithDetail("chain", desc).
		WithSuggestion("Remove one of the curation edges in the chain")
}

// assemble assigns global IDs over the pre-order layouts and interns the
// pools in ID order, then fills the child and availability tables.
func assemble(bundle string, langs []*languageGraph, trees [][]*node, maskLimit int) *Artifact {
	strs := NewStringPool()
	plats := NewPlatformPool(strs)

	art := &Artifact{
		bundle:  bundle,
		version: FormatVersion,
	}

	for _, g := range langs {
		art.languages = append(art.languages, languageRecord{Name: strs.Intern(g.name)})
	}

	var total int
	for _, order := range trees {
		total += len(order)
	}
	art.items = make([]itemRecord, 0, total)
	itemPlatforms := make([][]uint32, 0, total)

	// Pass 1: IDs, pools and item fields other than children.
	var next uint32
	for li, order := range trees {
		art.languages[li].First = next
		art.languages[li].Count = uint32(len(order))
		for _, n := range order {
			n.id = next
			next++

			rec := itemRecord{
				Reference: strs.Intern(n.e.ref),
				Title:     strs.Intern(n.e.title),
				Path:      strs.Intern(n.e.path),
				Kind:      n.e.kind,
				Language:  uint16(li),
				Parent:    noParent,
			}
			if n.parent != nil {
				rec.Parent = n.parent.id
			}
			var pids []uint32
			for _, p := range n.e.platforms {
				pids = append(pids, plats.Intern(p))
			}
			art.items = append(art.items, rec)
			itemPlatforms = append(itemPlatforms, pids)
		}
	}

	// Pass 2: contiguous child ranges and availability.
	mask := plats.Len() <= maskLimit
	if mask {
		art.flags |= flagMaskMode
	}
	art.children = make([]uint32, 0, total)
	for _, order := range trees {
		for _, n := range order {
			rec := &art.items[n.id]
			rec.ChildOffset = uint32(len(art.children))
			rec.ChildCount = uint32(len(n.children))
			for _, c := range n.children {
				art.children = append(art.children, c.id)
			}

			pids := itemPlatforms[n.id]
			if mask {
				for _, p := range pids {
					rec.Availability |= 1 << p
				}
				continue
			}
			rec.Availability = packList(uint32(len(art.availability)), uint32(len(pids)))
			art.availability = append(art.availability, pids...)
		}
	}

	art.strings = slices.Clone(strs.Entries())
	art.platforms = slices.Clone(plats.entries)
	art.buildIndexes()
	return art
}

func packList(offset, count uint32) uint64 {
	return uint64(offset)<<32 | uint64(count)
}

func unpackList(v uint64) (offset, count uint32) {
	return uint32(v >> 32), uint32(v)
}
