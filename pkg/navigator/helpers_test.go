package navigator

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

const testBundle = "com.example.docs"

func rec(ref, title, path string, kind Kind) TopicRecord {
	return TopicRecord{
		Reference: ref,
		Language:  "swift",
		Title:     title,
		Path:      path,
		Kind:      kind,
	}
}

// exampleRecords is the A / B1 / B2 / C / D graph: A has children B1 and
// B2, B2 has C and C has the leaf D. The slice is deliberately not in
// tree order.
func exampleRecords() []TopicRecord {
	return []TopicRecord{
		rec("doc://D", "D", "/documentation/a/b2/c/d", KindMember),
		rec("doc://B2", "B2", "/documentation/a/b2", KindArticle),
		rec("doc://C", "C", "/documentation/a/b2/c", KindType),
		rec("doc://A", "A", "/documentation/a", KindModule),
		rec("doc://B1", "B1", "/documentation/a/b1", KindArticle),
	}
}

const exampleDump = `com.example.docs [root]
  A [module]
    B1 [article]
    B2 [article]
      C [type]
        D [member]
`

func mustBuild(t testing.TB, records []TopicRecord, edges CurationEdges, opts ...Option) *BuildResult {
	t.Helper()
	opts = append([]Option{WithBundleIdentifier(testBundle)}, opts...)
	res, err := Build(records, edges, opts...)
	require.NoError(t, err)
	require.NotNil(t, res.Artifact)
	return res
}

func shuffled(records []TopicRecord, seed uint64) []TopicRecord {
	out := slices.Clone(records)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func codes(ds []Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}

// platformRecords builds n records under the root, each available on its
// own platform plus a shared one, so the pool holds n+1 platforms.
func platformRecords(n int) []TopicRecord {
	out := make([]TopicRecord, 0, n)
	for i := range n {
		r := rec(
			"doc://p"+string(rune('a'+i%26))+string(rune('a'+i/26)),
			"P"+string(rune('a'+i%26))+string(rune('a'+i/26)),
			"/documentation/p"+string(rune('a'+i%26))+string(rune('a'+i/26)),
			KindArticle,
		)
		r.Platforms = []Platform{
			{Name: "shared", Introduced: Version{Major: 1}},
			{Name: "os" + string(rune('a'+i%26)) + string(rune('a'+i/26)), Introduced: Version{Major: uint16(i), Minor: 1}},
		}
		out = append(out, r)
	}
	return out
}
