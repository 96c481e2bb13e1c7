package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

func TestIndexCmd_BuildsArtifact(t *testing.T) {
	// Given: a topic bundle
	isolate(t)
	dir := topicsFixture(t)
	artifact := filepath.Join(t.TempDir(), "out", "kit.navindex")

	// When: indexing it
	out, err := execute(t, "index", dir, "-o", artifact, "--bundle", "com.example.kit", "--no-color")

	// Then: the summary is printed and the artifact loads
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+artifact)
	assert.Contains(t, out, "4 records")
	assert.NotContains(t, out, "diagnostic")

	a, err := navigator.LoadIndex(artifact)
	require.NoError(t, err)
	assert.Equal(t, "com.example.kit", a.BundleIdentifier())
	assert.Equal(t, []string{"occ", "swift"}, a.Languages())
	start, ok := a.Lookup("swift", "/documentation/start")
	require.True(t, ok)
	parent, ok := a.Parent(start.ID)
	require.True(t, ok)
	assert.Equal(t, "Kit", parent.Title, "curation places the article under the module")
}

func TestIndexCmd_DefaultOutputAndBundle(t *testing.T) {
	// Given: a bundle that is its own project root
	isolate(t)
	dir := topicsFixture(t)
	writeFile(t, dir, ".navindex.yaml", "index:\n  root_title: Kit Docs\n")

	// When: indexing without -o or --bundle
	_, err := execute(t, "index", dir, "--no-color")

	// Then: the artifact lands in .navindex and the root title comes from config
	require.NoError(t, err)
	a, err := navigator.LoadIndex(filepath.Join(dir, ".navindex", "navigator.navindex"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), a.BundleIdentifier())
	root, err := a.Root("swift")
	require.NoError(t, err)
	assert.Equal(t, "Kit Docs", root.Title)
}

func TestIndexCmd_JSONReportWithDiagnostics(t *testing.T) {
	// Given: a bundle with an orphan whose parent path does not exist
	isolate(t)
	dir := topicsFixture(t)
	writeFile(t, dir, "orphan.json", `{"reference":"doc://kit/lost","language":"swift","title":"Lost","path":"/documentation/kit/missing/lost","kind":"member"}`)
	artifact := filepath.Join(t.TempDir(), "kit.navindex")

	// When: indexing with --json
	out, err := execute(t, "index", dir, "-o", artifact, "--json")

	// Then: the report lists the orphan and the build still succeeds
	require.NoError(t, err)
	var report indexReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, artifact, report.Output)
	assert.Equal(t, 5, report.Stats.Records)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, naverrors.ErrCodeOrphanTopic, report.Diagnostics[0].Code)
	assert.Equal(t, "doc://kit/lost", report.Diagnostics[0].Reference)
	assert.FileExists(t, artifact)
}

func TestIndexCmd_Failures(t *testing.T) {
	isolate(t)

	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantCode string
	}{
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			wantCode: naverrors.ErrCodeIOFailure,
		},
		{
			name: "file instead of directory",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "kit.json", "{}")
				return filepath.Join(dir, "kit.json")
			},
			wantCode: naverrors.ErrCodeInvalidPath,
		},
		{
			name: "curation cycle",
			setup: func(t *testing.T) string {
				dir := topicsFixture(t)
				writeFile(t, dir, "curation.yaml", "doc://kit/button:\n  - doc://kit/action\ndoc://kit/action:\n  - doc://kit/button\n")
				return dir
			},
			wantCode: naverrors.ErrCodeCurationCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			artifact := filepath.Join(t.TempDir(), "kit.navindex")

			_, err := execute(t, "index", dir, "-o", artifact)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, naverrors.GetCode(err))
			assert.NoFileExists(t, artifact)
		})
	}
}

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestIndexCmd_WatchRebuilds(t *testing.T) {
	// Given: a watch running in polling mode with a short debounce
	isolate(t)
	t.Setenv("NAVINDEX_WATCH_DEBOUNCE", "50ms")
	dir := topicsFixture(t)
	artifact := filepath.Join(t.TempDir(), "kit.navindex")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out syncBuffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"index", dir, "-o", artifact, "--watch", "--poll", "--no-color"})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching")
	}, 10*time.Second, 20*time.Millisecond)

	// When: a topic file is added (and touched until the poller sees it)
	more := filepath.Join(dir, "more.json")
	require.NoError(t, os.WriteFile(more, []byte(`{"reference":"doc://kit/more","language":"swift","title":"More","path":"/documentation/kit/more","kind":"type"}`), 0o644))
	stamp := time.Now()
	require.Eventually(t, func() bool {
		if strings.Count(out.String(), "Wrote ") >= 2 {
			return true
		}
		stamp = stamp.Add(time.Second)
		_ = os.Chtimes(more, stamp, stamp)
		return false
	}, 20*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// Then: the rewritten artifact holds the new topic
	a, err := navigator.LoadIndex(artifact)
	require.NoError(t, err)
	_, ok := a.Lookup("swift", "/documentation/kit/more")
	assert.True(t, ok)
	assert.Contains(t, out.String(), "rebuilding")
}

func TestIndexCmd_WatchReloadsConfigAboveInput(t *testing.T) {
	// Given: topics under project/topics and the config in project/
	isolate(t)
	t.Setenv("NAVINDEX_WATCH_DEBOUNCE", "50ms")
	project := t.TempDir()
	dir := filepath.Join(project, "topics")
	require.NoError(t, os.Rename(topicsFixture(t), dir))
	cfgPath := filepath.Join(project, ".navindex.yaml")
	writeFile(t, project, ".navindex.yaml", "index:\n  root_title: Kit Docs\n")
	artifact := filepath.Join(t.TempDir(), "kit.navindex")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out syncBuffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"index", dir, "-o", artifact, "--watch", "--poll", "--no-color"})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching")
	}, 10*time.Second, 20*time.Millisecond)

	// When: the root title changes in the project config
	writeFile(t, project, ".navindex.yaml", "index:\n  root_title: Kit Reference\n")
	stamp := time.Now()
	require.Eventually(t, func() bool {
		if strings.Count(out.String(), "Wrote ") >= 2 {
			return true
		}
		stamp = stamp.Add(time.Second)
		_ = os.Chtimes(cfgPath, stamp, stamp)
		return false
	}, 20*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// Then: the rebuilt artifact uses the new title
	a, err := navigator.LoadIndex(artifact)
	require.NoError(t, err)
	r, err := a.Root("swift")
	require.NoError(t, err)
	assert.Equal(t, "Kit Reference", r.Title)
	assert.NotContains(t, out.String(), "Keeping previous configuration")
}
