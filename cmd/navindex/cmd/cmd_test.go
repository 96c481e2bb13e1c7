package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points user config, logs and NAVINDEX_* overrides at nothing.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"NAVINDEX_BUNDLE_IDENTIFIER", "NAVINDEX_ROOT_TITLE", "NAVINDEX_OUTPUT", "NAVINDEX_MASK_LIMIT",
		"NAVINDEX_WORKERS", "NAVINDEX_WATCH_DEBOUNCE", "NAVINDEX_LOG_LEVEL", "NAVINDEX_CACHE_ARTIFACTS",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// topicsFixture writes a small two-language bundle.
func topicsFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "kit.json", `{"reference":"doc://kit","language":"swift","title":"Kit","path":"/documentation/kit","kind":"module","variants":[{"language":"occ"}]}`)
	writeFile(t, dir, "types.json", `[
  {"reference":"doc://kit/button","language":"swift","title":"Button","path":"/documentation/kit/button","kind":"type",
   "variants":[{"language":"occ","title":"UIButton","path":"/documentation/kit/uibutton"}],
   "platforms":[{"name":"iOS","introduced":"13.0"}]},
  {"reference":"doc://kit/action","language":"swift","title":"Action","path":"/documentation/kit/action","kind":"type"}
]`)
	writeFile(t, dir, "guides.yaml", `reference: doc://kit/start
language: swift
title: Getting Started
path: /documentation/start
kind: article
`)
	writeFile(t, dir, "curation.yaml", `doc://kit:
  - doc://kit/start
`)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), args...)
}

func executeContext(ctx context.Context, args ...string) (string, error) {
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// buildFixture indexes a fresh fixture and returns the artifact path.
func buildFixture(t *testing.T) string {
	t.Helper()
	isolate(t)
	out := filepath.Join(t.TempDir(), "kit.navindex")
	_, err := execute(t, "index", topicsFixture(t), "-o", out, "--bundle", "com.example.kit", "--no-color")
	require.NoError(t, err)
	return out
}
