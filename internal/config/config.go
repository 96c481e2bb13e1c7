package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

const (
	// ProjectConfigName is the project config file, looked up in the project root.
	ProjectConfigName = ".navindex.yaml"
	// ProjectConfigAltName is accepted when ProjectConfigName is absent.
	ProjectConfigAltName = ".navindex.yml"
	// DataDirName holds build outputs inside the project root.
	DataDirName = ".navindex"
	// DefaultArtifactName is the artifact file name inside DataDirName.
	DefaultArtifactName = "navigator.navindex"
)

// Config represents the complete navindex configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Input   InputConfig   `yaml:"input" json:"input"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
}

// IndexConfig configures the navigator build.
type IndexConfig struct {
	// BundleIdentifier is written to the artifact header.
	// Empty means the base name of the input directory.
	BundleIdentifier string `yaml:"bundle_identifier" json:"bundle_identifier"`
	// RootTitle is the title of each language root (default: bundle identifier).
	RootTitle string `yaml:"root_title" json:"root_title"`
	// Output is the artifact path. Relative paths resolve against the project root.
	// Empty means .navindex/navigator.navindex.
	Output string `yaml:"output" json:"output"`
	// RootPrefixes are the paths whose direct children attach to the language root.
	RootPrefixes []string `yaml:"root_prefixes" json:"root_prefixes"`
	// MaskLimit is the largest platform pool stored as bitmasks (1-64).
	MaskLimit int `yaml:"mask_limit" json:"mask_limit"`
}

// InputConfig configures topic file discovery.
type InputConfig struct {
	Include      []string `yaml:"include" json:"include"`
	Exclude      []string `yaml:"exclude" json:"exclude"`
	Workers      int      `yaml:"workers" json:"workers"`
	CurationFile string   `yaml:"curation_file" json:"curation_file"`
}

// WatchConfig configures `index --watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// CacheConfig configures the artifact catalog.
type CacheConfig struct {
	// Artifacts is how many loaded artifacts stay in memory.
	Artifacts int `yaml:"artifacts" json:"artifacts"`
}

// defaultIncludePatterns match every topic file format the loader reads.
var defaultIncludePatterns = []string{
	"**/*.json",
	"**/*.yaml",
	"**/*.yml",
}

// defaultExcludePatterns are always excluded.
var defaultExcludePatterns = []string{
	"**/.git/**",
	"**/.navindex/**",
	"**/node_modules/**",
	"**/.navindex.yaml",
	"**/.navindex.yml",
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			RootPrefixes: []string{"/documentation", "/tutorials"},
			MaskLimit:    64,
		},
		Input: InputConfig{
			Include:      append([]string(nil), defaultIncludePatterns...),
			Exclude:      append([]string(nil), defaultExcludePatterns...),
			Workers:      runtime.NumCPU(),
			CurationFile: "curation.yaml",
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Cache: CacheConfig{
			Artifacts: 8,
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/navindex/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/navindex/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "navindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "navindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "navindex", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var parsed Config
	if err := parseYAMLFile(configPath, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/navindex/config.yaml)
//  3. Project config (.navindex.yaml in dir)
//  4. Environment variables (NAVINDEX_*)
//
// CLI flags are applied by the caller on top of the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, preferring
// .navindex.yaml. The second result is false when neither exists.
func ProjectConfigPath(dir string) (string, bool) {
	for _, p := range ProjectConfigCandidates(dir) {
		if fileExists(p) {
			return p, true
		}
	}
	return filepath.Join(dir, ProjectConfigName), false
}

// ProjectConfigCandidates returns every path a project config in dir may
// use, in order of preference.
func ProjectConfigCandidates(dir string) []string {
	return []string{
		filepath.Join(dir, ProjectConfigName),
		filepath.Join(dir, ProjectConfigAltName),
	}
}

func (c *Config) loadFromFile(dir string) error {
	path, ok := ProjectConfigPath(dir)
	if !ok {
		return nil
	}
	var parsed Config
	if err := parseYAMLFile(path, &parsed); err != nil {
		return err
	}
	c.mergeWith(&parsed)
	return nil
}

func parseYAMLFile(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return naverrors.IOError("read config", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return naverrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Index
	if other.Index.BundleIdentifier != "" {
		c.Index.BundleIdentifier = other.Index.BundleIdentifier
	}
	if other.Index.RootTitle != "" {
		c.Index.RootTitle = other.Index.RootTitle
	}
	if other.Index.Output != "" {
		c.Index.Output = other.Index.Output
	}
	if len(other.Index.RootPrefixes) > 0 {
		c.Index.RootPrefixes = other.Index.RootPrefixes
	}
	if other.Index.MaskLimit != 0 {
		c.Index.MaskLimit = other.Index.MaskLimit
	}

	// Input
	if len(other.Input.Include) > 0 {
		c.Input.Include = other.Input.Include
	}
	if len(other.Input.Exclude) > 0 {
		// Merge with defaults rather than replace
		c.Input.Exclude = append(c.Input.Exclude, other.Input.Exclude...)
	}
	if other.Input.Workers != 0 {
		c.Input.Workers = other.Input.Workers
	}
	if other.Input.CurationFile != "" {
		c.Input.CurationFile = other.Input.CurationFile
	}

	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.Cache.Artifacts != 0 {
		c.Cache.Artifacts = other.Cache.Artifacts
	}
}

// applyEnvOverrides applies NAVINDEX_* environment variable overrides.
// Unparseable numbers are ignored so a stray variable cannot break a build.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NAVINDEX_BUNDLE_IDENTIFIER"); v != "" {
		c.Index.BundleIdentifier = v
	}
	if v := os.Getenv("NAVINDEX_ROOT_TITLE"); v != "" {
		c.Index.RootTitle = v
	}
	if v := os.Getenv("NAVINDEX_OUTPUT"); v != "" {
		c.Index.Output = v
	}
	if v := os.Getenv("NAVINDEX_MASK_LIMIT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Index.MaskLimit = n
		}
	}
	if v := os.Getenv("NAVINDEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.Input.Workers = n
		}
	}
	if v := os.Getenv("NAVINDEX_WATCH_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
	if v := os.Getenv("NAVINDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NAVINDEX_CACHE_ARTIFACTS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.Cache.Artifacts = n
		}
	}
}

// DebounceDuration parses Watch.Debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, naverrors.ConfigError(fmt.Sprintf("watch.debounce %q is not a duration", c.Watch.Debounce), err)
	}
	return d, nil
}

// OutputPath resolves the artifact path against the project root.
func (c *Config) OutputPath(projectRoot string) string {
	out := c.Index.Output
	if out == "" {
		return filepath.Join(projectRoot, DataDirName, DefaultArtifactName)
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(projectRoot, out)
}

// BundleFor returns the configured bundle identifier, or the base name of
// inputDir when none is set.
func (c *Config) BundleFor(inputDir string) string {
	if c.Index.BundleIdentifier != "" {
		return c.Index.BundleIdentifier
	}
	abs, err := filepath.Abs(inputDir)
	if err != nil {
		return filepath.Base(inputDir)
	}
	return filepath.Base(abs)
}

// FindProjectRoot finds the project root directory.
// It looks for a .git directory or .navindex.yaml/.yml file by walking up the directory tree.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", naverrors.New(naverrors.ErrCodeInvalidPath, "failed to get absolute path", err).
			WithDetail("path", startDir)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if _, ok := ProjectConfigPath(currentDir); ok {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, return original directory
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Index.MaskLimit < 1 || c.Index.MaskLimit > 64 {
		return naverrors.ConfigError(fmt.Sprintf("index.mask_limit must be between 1 and 64, got %d", c.Index.MaskLimit), nil)
	}
	for _, p := range c.Index.RootPrefixes {
		if !strings.HasPrefix(p, "/") {
			return naverrors.ConfigError(fmt.Sprintf("index.root_prefixes entries must start with '/', got %q", p), nil)
		}
	}

	if c.Input.Workers < 1 {
		return naverrors.ConfigError(fmt.Sprintf("input.workers must be positive, got %d", c.Input.Workers), nil)
	}
	if len(c.Input.Include) == 0 {
		return naverrors.ConfigError("input.include must list at least one pattern", nil)
	}
	for _, patterns := range [][]string{c.Input.Include, c.Input.Exclude} {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return naverrors.ConfigError(fmt.Sprintf("invalid glob pattern %q", p), doublestar.ErrBadPattern)
			}
		}
	}

	if _, err := c.DebounceDuration(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return naverrors.ConfigError(fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}
	if c.Logging.MaxSizeMB < 1 || c.Logging.MaxFiles < 1 {
		return naverrors.ConfigError("logging.max_size_mb and logging.max_files must be positive", nil)
	}

	if c.Cache.Artifacts < 1 {
		return naverrors.ConfigError(fmt.Sprintf("cache.artifacts must be positive, got %d", c.Cache.Artifacts), nil)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return naverrors.InternalError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return naverrors.IOError("write config", path, err)
	}
	return nil
}
