package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/navindex/internal/config"
)

func TestConfigInit_CreatesProjectConfig(t *testing.T) {
	// Given: a directory without configuration
	isolate(t)
	dir := t.TempDir()

	// When: running config init
	out, err := execute(t, "config", "init", dir)

	// Then: .navindex.yaml holds the defaults
	require.NoError(t, err)
	assert.Contains(t, out, "Created project configuration")
	path := filepath.Join(dir, config.ProjectConfigName)
	assert.FileExists(t, path)
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig().Index.RootPrefixes, cfg.Index.RootPrefixes)
}

func TestConfigInit_ExistingConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, config.ProjectConfigName, "index:\n  bundle_identifier: custom\n")
	path := filepath.Join(dir, config.ProjectConfigName)

	// Without --force nothing changes.
	out, err := execute(t, "config", "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Index.BundleIdentifier)

	// With --force the file is replaced and a backup kept.
	out, err = execute(t, "config", "init", dir, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup:")
	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
	cfg, err = config.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Index.BundleIdentifier)
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, config.ProjectConfigName, "index:\n  bundle_identifier: com.example.kit\ninput:\n  workers: 3\n")

	tests := []struct {
		name       string
		source     string
		wantBundle string
		wantWorker int
	}{
		{"merged", "merged", "com.example.kit", 3},
		{"project", "project", "com.example.kit", 3},
		{"defaults", "defaults", "", config.NewConfig().Input.Workers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "config", "show", dir, "--json", "--source", tt.source)

			require.NoError(t, err)
			var cfg config.Config
			require.NoError(t, json.Unmarshal([]byte(out), &cfg))
			assert.Equal(t, tt.wantBundle, cfg.Index.BundleIdentifier)
			assert.Equal(t, tt.wantWorker, cfg.Input.Workers)
		})
	}
}

func TestConfigShow_YAMLAndMissingLayers(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, err := execute(t, "config", "show", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration source: merged")
	assert.Contains(t, out, "root_prefixes:")

	out, err = execute(t, "config", "show", dir, "--source", "project")
	require.NoError(t, err)
	assert.Contains(t, out, "No project configuration file found")

	out, err = execute(t, "config", "show", dir, "--source", "user")
	require.NoError(t, err)
	assert.Contains(t, out, "No user configuration file found")

	_, err = execute(t, "config", "show", dir, "--source", "nope")
	assert.Error(t, err)
}

func TestConfigShow_InvalidProjectConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, config.ProjectConfigName, "index:\n  mask_limit: 100\n")

	_, err := execute(t, "config", "show", dir)

	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, err := execute(t, "config", "path", dir)

	require.NoError(t, err)
	assert.Contains(t, out, config.GetUserConfigPath())
	assert.Contains(t, out, filepath.Join(dir, config.ProjectConfigName))
}
