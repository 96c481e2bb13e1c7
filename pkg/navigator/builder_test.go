package navigator

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

func TestBuild_ExampleGraph_DumpsPreOrder(t *testing.T) {
	// Given: the A / B1 / B2 / C / D graph submitted out of order
	records := exampleRecords()

	// When: building
	res := mustBuild(t, records, nil)

	// Then: parents come before children, each once, B1 before B2
	root, err := res.Artifact.Root("swift")
	require.NoError(t, err)
	assert.Equal(t, exampleDump, res.Artifact.DumpTree(root.ID))
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 6, res.Stats.Items)
	assert.Equal(t, 5, res.Stats.Records)
}

func TestBuild_Deterministic_AcrossArrivalOrders(t *testing.T) {
	// Given: a graph with variants, platforms and explicit curation
	records := append(exampleRecords(), platformRecords(5)...)
	records[0].Variants = []Variant{{Language: "occ", Title: "D (ObjC)"}}
	records[3].Variants = []Variant{{Language: "occ"}}
	edges := CurationEdges{"doc://B1": {"doc://pba"}}

	first := mustBuild(t, records, edges)
	want, err := Encode(first.Artifact)
	require.NoError(t, err)

	// When: rebuilding from many shuffled inputs
	for seed := range uint64(20) {
		res := mustBuild(t, shuffled(records, seed), edges)

		// Then: dumps and bytes are identical
		assert.Equal(t, first.Artifact.Dump(), res.Artifact.Dump(), "seed %d", seed)
		got, err := Encode(res.Artifact)
		require.NoError(t, err)
		assert.Equal(t, want, got, "seed %d", seed)
		assert.Equal(t, first.Diagnostics, res.Diagnostics, "seed %d", seed)
	}
}

func TestBuild_SiblingOrder_TitleThenKindThenPath(t *testing.T) {
	// Given: siblings whose titles collide case-insensitively
	records := []TopicRecord{
		rec("doc://beta", "beta", "/documentation/d", KindArticle),
		rec("doc://alpha-article", "Alpha", "/documentation/b", KindArticle),
		rec("doc://alpha-module-c", "alpha", "/documentation/c", KindModule),
		rec("doc://alpha-module-a", "Alpha", "/documentation/a", KindModule),
	}

	// When: building
	res := mustBuild(t, records, nil)

	// Then: equal titles order by kind rank, then by path
	root, err := res.Artifact.Root("swift")
	require.NoError(t, err)
	var paths []string
	for _, c := range res.Artifact.Children(root.ID) {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{
		"/documentation/a",
		"/documentation/c",
		"/documentation/b",
		"/documentation/d",
	}, paths)
}

func TestBuild_CurationCycle_FailsWithoutArtifact(t *testing.T) {
	// Given: A curates B and B curates A
	records := []TopicRecord{
		rec("doc://B", "B", "/documentation/b", KindArticle),
		rec("doc://A", "A", "/documentation/a", KindArticle),
	}
	edges := CurationEdges{
		"doc://A": {"doc://B"},
		"doc://B": {"doc://A"},
	}

	// When: building
	res, err := Build(records, edges, WithBundleIdentifier(testBundle))

	// Then: the build fails with CurationCycle naming the chain
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrCurationCycle))
	assert.True(t, naverrors.IsFatal(err))
	ne, ok := naverrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "doc://A -> doc://B -> doc://A", ne.Detail("chain"))
	assert.Equal(t, "swift", ne.Detail("language"))
}

func TestBuild_CurationCycle_ChainIndependentOfEntryPoint(t *testing.T) {
	// Given: a three-node cycle fed from a descendant
	records := []TopicRecord{
		rec("doc://A", "A", "/documentation/a", KindArticle),
		rec("doc://B", "B", "/documentation/b", KindArticle),
		rec("doc://C", "C", "/documentation/c", KindArticle),
		rec("doc://0", "Zero", "/documentation/z", KindArticle),
	}
	edges := CurationEdges{
		"doc://A": {"doc://B"},
		"doc://B": {"doc://C"},
		"doc://C": {"doc://A", "doc://0"},
	}

	_, err := Build(records, edges, WithBundleIdentifier(testBundle))

	require.Error(t, err)
	ne, ok := naverrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "doc://A -> doc://B -> doc://C -> doc://A", ne.Detail("chain"))
}

func TestBuild_SelfCuration_IsCycle(t *testing.T) {
	records := []TopicRecord{rec("doc://A", "A", "/documentation/a", KindArticle)}

	_, err := Build(records, CurationEdges{"doc://A": {"doc://A"}}, WithBundleIdentifier(testBundle))

	assert.True(t, errors.Is(err, ErrCurationCycle))
}

func TestBuild_ExplicitCuration_OverridesPathHierarchy(t *testing.T) {
	// Given: D lives under C by path but B1 curates it
	edges := CurationEdges{"doc://B1": {"doc://D"}}

	// When: building
	res := mustBuild(t, exampleRecords(), edges)

	// Then: D hangs off B1
	d, ok := res.Artifact.Lookup("swift", "/documentation/a/b2/c/d")
	require.True(t, ok)
	parent, ok := res.Artifact.Parent(d.ID)
	require.True(t, ok)
	assert.Equal(t, "B1", parent.Title)
}

func TestBuild_CurationParentField_UsedWithoutEdges(t *testing.T) {
	records := exampleRecords()
	records[0].CurationParent = "doc://A" // D

	res := mustBuild(t, records, nil)

	d, ok := res.Artifact.Lookup("swift", "/documentation/a/b2/c/d")
	require.True(t, ok)
	parent, _ := res.Artifact.Parent(d.ID)
	assert.Equal(t, "A", parent.Title)
}

func TestBuild_CurationParentField_MissingFallsBackToPath(t *testing.T) {
	records := exampleRecords()
	records[0].CurationParent = "doc://nowhere"

	res := mustBuild(t, records, nil)

	d, _ := res.Artifact.Lookup("swift", "/documentation/a/b2/c/d")
	parent, _ := res.Artifact.Parent(d.ID)
	assert.Equal(t, "C", parent.Title)
	assert.Empty(t, res.Diagnostics)
}

func TestBuild_AmbiguousCuration_SmallestParentWins(t *testing.T) {
	// Given: two parents curate D
	edges := CurationEdges{
		"doc://B2": {"doc://D"},
		"doc://B1": {"doc://D"},
	}

	// When: building
	res := mustBuild(t, exampleRecords(), edges)

	// Then: doc://B1 wins and the ambiguity is reported
	d, _ := res.Artifact.Lookup("swift", "/documentation/a/b2/c/d")
	parent, _ := res.Artifact.Parent(d.ID)
	assert.Equal(t, "B1", parent.Title)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, naverrors.ErrCodeAmbiguousCuration, res.Diagnostics[0].Code)
	assert.Equal(t, "doc://D", res.Diagnostics[0].Reference)
}

func TestBuild_OrphanDropped_WithDescendants(t *testing.T) {
	// Given: O whose parent path does not exist, and P below O
	records := append(exampleRecords(),
		rec("doc://O", "O", "/documentation/missing/o", KindArticle),
		rec("doc://P", "P", "/documentation/missing/o/p", KindArticle),
	)

	// When: building
	res := mustBuild(t, records, nil)

	// Then: both are reported and absent, the rest of the tree is intact
	root, _ := res.Artifact.Root("swift")
	assert.Equal(t, exampleDump, res.Artifact.DumpTree(root.ID))
	assert.Equal(t, []string{naverrors.ErrCodeOrphanTopic, naverrors.ErrCodeOrphanTopic}, codes(res.Diagnostics))
	assert.Equal(t, "doc://O", res.Diagnostics[0].Reference)
	assert.Equal(t, "doc://P", res.Diagnostics[1].Reference)
	assert.Contains(t, res.Diagnostics[1].Message, "doc://O")
	_, found := res.Artifact.Lookup("swift", "/documentation/missing/o/p")
	assert.False(t, found)
}

func TestBuild_DuplicateRecord_KeepsCanonicalFirst(t *testing.T) {
	// Given: the same reference twice with different paths
	records := []TopicRecord{
		rec("doc://X", "X", "/documentation/z", KindArticle),
		rec("doc://X", "X", "/documentation/y", KindArticle),
	}

	for seed := range uint64(4) {
		// When: building in any order
		res := mustBuild(t, shuffled(records, seed), nil)

		// Then: the canonically smaller path is kept
		_, ok := res.Artifact.Lookup("swift", "/documentation/y")
		assert.True(t, ok)
		_, ok = res.Artifact.Lookup("swift", "/documentation/z")
		assert.False(t, ok)
		assert.Equal(t, []string{naverrors.ErrCodeDuplicateRecord}, codes(res.Diagnostics))
	}
}

func TestBuild_DuplicateRecord_DifferingCurationParent_IndependentOfOrder(t *testing.T) {
	// Given: two copies of X that differ only in their curation parent
	base := []TopicRecord{
		rec("doc://A", "A", "/documentation/a", KindModule),
		rec("doc://P1", "P1", "/documentation/a/p1", KindArticle),
		rec("doc://P2", "P2", "/documentation/a/p2", KindArticle),
	}
	x1 := rec("doc://X", "X", "/documentation/a/x", KindArticle)
	x1.CurationParent = "doc://P1"
	x2 := rec("doc://X", "X", "/documentation/a/x", KindArticle)
	x2.CurationParent = "doc://P2"

	// When: building with the copies in either order
	first := mustBuild(t, append(slices.Clone(base), x1, x2), nil)
	second := mustBuild(t, append(slices.Clone(base), x2, x1), nil)

	// Then: the same copy wins and the artifacts are identical
	assert.Equal(t, first.Artifact.Dump(), second.Artifact.Dump())
	want, err := Encode(first.Artifact)
	require.NoError(t, err)
	got, err := Encode(second.Artifact)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	x, ok := first.Artifact.Lookup("swift", "/documentation/a/x")
	require.True(t, ok)
	parent, ok := first.Artifact.Parent(x.ID)
	require.True(t, ok)
	assert.Equal(t, "P1", parent.Title)
}

func TestBuild_DuplicatePath_KeepsSmallestReference(t *testing.T) {
	records := []TopicRecord{
		rec("doc://P2", "Two", "/documentation/p", KindArticle),
		rec("doc://P1", "One", "/documentation/p", KindArticle),
	}

	res := mustBuild(t, records, nil)

	it, ok := res.Artifact.Lookup("swift", "/documentation/p")
	require.True(t, ok)
	assert.Equal(t, "doc://P1", it.Reference)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, naverrors.ErrCodeDuplicatePath, res.Diagnostics[0].Code)
	assert.Equal(t, "doc://P2", res.Diagnostics[0].Reference)
}

func TestBuild_InvalidRecords_Reported(t *testing.T) {
	tests := []struct {
		name   string
		record TopicRecord
		code   string
	}{
		{"no reference", rec("", "T", "/documentation/t", KindArticle), naverrors.ErrCodeInvalidRecord},
		{"no path", rec("doc://T", "T", "  ", KindArticle), naverrors.ErrCodeInvalidRecord},
		{"no language", TopicRecord{Reference: "doc://T", Path: "/documentation/t", Kind: KindArticle}, naverrors.ErrCodeInvalidRecord},
		{"root kind", rec("doc://T", "T", "/documentation/t", KindRoot), naverrors.ErrCodeInvalidKind},
		{"out of range kind", rec("doc://T", "T", "/documentation/t", Kind(200)), naverrors.ErrCodeInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustBuild(t, append(exampleRecords(), tt.record), nil)

			assert.Equal(t, []string{tt.code}, codes(res.Diagnostics))
			assert.Equal(t, 6, res.Artifact.Len())
		})
	}
}

func TestBuild_EmptyTitle_FallsBackToLastSegment(t *testing.T) {
	res := mustBuild(t, []TopicRecord{rec("doc://T", " ", "/documentation/things/", KindArticle)}, nil)

	it, ok := res.Artifact.Lookup("swift", "/documentation/things")
	require.True(t, ok)
	assert.Equal(t, "things", it.Title)
}

func TestBuild_Variants_OneTreePerLanguage(t *testing.T) {
	// Given: records with an Objective-C variant
	records := exampleRecords()
	for i := range records {
		records[i].Variants = []Variant{{Language: "occ", Title: records[i].Title + "c"}}
	}

	// When: building
	res := mustBuild(t, records, nil)

	// Then: both languages exist, sorted, with global dense IDs
	a := res.Artifact
	assert.Equal(t, []string{"occ", "swift"}, a.Languages())
	occ, err := a.Root("occ")
	require.NoError(t, err)
	swift, err := a.Root("swift")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), occ.ID)
	assert.Equal(t, uint32(6), swift.ID)
	assert.Equal(t, 12, a.Len())
	assert.True(t, strings.Contains(a.DumpTree(occ.ID), "B2c [article]"))

	// And: a topic maps to its other-language view
	d, ok := a.Lookup("swift", "/documentation/a/b2/c/d")
	require.True(t, ok)
	v, ok := a.Variant(d.ID, "occ")
	require.True(t, ok)
	assert.Equal(t, "Dc", v.Title)
	assert.Equal(t, d.Reference, v.Reference)
}

func TestBuild_CurationIsPerLanguage(t *testing.T) {
	// Given: B1 exists only in swift, and curates D
	records := exampleRecords()
	for i := range records {
		if records[i].Reference != "doc://B1" {
			records[i].Variants = []Variant{{Language: "occ"}}
		}
	}
	edges := CurationEdges{"doc://B1": {"doc://D"}}

	res := mustBuild(t, records, edges)

	// Then: swift follows the edge, occ falls back to the path hierarchy
	swiftD, _ := res.Artifact.Lookup("swift", "/documentation/a/b2/c/d")
	occD, _ := res.Artifact.Lookup("occ", "/documentation/a/b2/c/d")
	sp, _ := res.Artifact.Parent(swiftD.ID)
	op, _ := res.Artifact.Parent(occD.ID)
	assert.Equal(t, "B1", sp.Title)
	assert.Equal(t, "C", op.Title)
}

func TestBuild_RootTitleAndPrefixes(t *testing.T) {
	records := []TopicRecord{
		rec("doc://G", "Guide", "/guides/start", KindTutorial),
	}

	res := mustBuild(t, records, nil, WithRootTitle("Docs"), WithRootPrefixes("/guides"))

	root, _ := res.Artifact.Root("swift")
	assert.Equal(t, "Docs [root]\n  Guide [tutorial]\n", res.Artifact.DumpTree(root.ID))
}

func TestBuild_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"missing bundle", nil},
		{"blank bundle", []Option{WithBundleIdentifier("  ")}},
		{"mask limit zero", []Option{WithBundleIdentifier(testBundle), WithMaskLimit(0)}},
		{"mask limit too large", []Option{WithBundleIdentifier(testBundle), WithMaskLimit(65)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Build(exampleRecords(), nil, tt.opts...)

			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrInvalidOptions))
		})
	}
}

func TestBuild_NoRecords_EmptyArtifact(t *testing.T) {
	res := mustBuild(t, nil, nil)

	assert.Equal(t, 0, res.Artifact.Len())
	assert.Empty(t, res.Artifact.Languages())
	assert.Equal(t, "", res.Artifact.Dump())
}

func TestBuild_DiagnosticsSortedByCodeLanguageReference(t *testing.T) {
	records := append(exampleRecords(),
		rec("doc://Z", "Z", "/documentation/none/z", KindArticle),
		rec("doc://Y", "Y", "/documentation/none/y", KindArticle),
		rec("doc://A", "A", "/documentation/a-again", KindArticle),
	)

	res := mustBuild(t, records, nil)

	assert.Equal(t, []string{
		naverrors.ErrCodeOrphanTopic,
		naverrors.ErrCodeOrphanTopic,
		naverrors.ErrCodeDuplicateRecord,
	}, codes(res.Diagnostics))
	assert.Equal(t, "doc://Y", res.Diagnostics[0].Reference)
	assert.Equal(t, "doc://Z", res.Diagnostics[1].Reference)
}

func TestBuild_InternsInWalkOrder(t *testing.T) {
	res := mustBuild(t, exampleRecords(), nil)

	// Language names first, then root reference (empty), title and path.
	assert.Equal(t, []string{"swift", "", testBundle, "/", "doc://A", "A", "/documentation/a"},
		res.Artifact.strings[:7])
}
