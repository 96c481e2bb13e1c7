package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
	// OpCurationChange indicates the curation file changed.
	OpCurationChange
	// OpConfigChange indicates one of Options.ConfigFiles changed.
	OpConfigChange
)

var opNames = [...]string{"CREATE", "MODIFY", "DELETE", "RENAME", "CURATION_CHANGE", "CONFIG_CHANGE"}

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "UNKNOWN"
	}
	return opNames[op]
}

// FileEvent represents a file system event.
type FileEvent struct {
	// Path is relative to the watched root. Config files above the root
	// start with "..".
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Matcher selects topic files. topicgraph.Filter implements it.
type Matcher interface {
	Match(rel string) bool
	SkipDir(rel string) bool
}

// Options configures the watcher behavior.
type Options struct {
	// Debounce is the quiet period before a batch is emitted. Default: 300ms.
	Debounce time.Duration
	// PollInterval is the scan interval in polling mode. Default: 2s.
	PollInterval time.Duration
	// EventBufferSize is the number of batches buffered. Default: 16.
	EventBufferSize int
	// Matcher selects topic files. Nil matches every file.
	Matcher Matcher
	// CurationFile is relative to the root.
	CurationFile string
	// ConfigFiles are the project config paths, absolute or relative to the
	// working directory. They may lie above the root; their directories are
	// watched too.
	ConfigFiles []string
	// ForcePolling skips fsnotify.
	ForcePolling bool

	// configRels holds ConfigFiles relative to the root, set by Start.
	configRels []string
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 300 * time.Millisecond
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = 16
	}
	return o
}

// classify maps a raw operation on rel to the operation reported, or false
// when the path is not relevant to a build.
func (o Options) classify(rel string, isDir bool, op Operation) (Operation, bool) {
	if rel == "." || rel == "" {
		return 0, false
	}
	rel = filepath.Clean(rel)
	switch {
	case !isDir && slices.Contains(o.configRels, rel):
		return OpConfigChange, true
	case outsideRoot(rel):
		return 0, false
	case o.CurationFile != "" && rel == filepath.Clean(o.CurationFile):
		return OpCurationChange, true
	}
	if isDir {
		if o.Matcher != nil && o.Matcher.SkipDir(rel) {
			return 0, false
		}
		// A vanished directory may have held topic files.
		return op, op == OpDelete || op == OpRename
	}
	if o.Matcher != nil && !o.Matcher.Match(rel) {
		return 0, false
	}
	return op, true
}

// outsideRoot reports whether a cleaned relative path climbs above the root.
func outsideRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// skipDir reports whether a directory is never descended into.
func (o Options) skipDir(rel string) bool {
	if rel == "." {
		return false
	}
	if base := filepath.Base(rel); base == ".git" || base == ".navindex" {
		return true
	}
	return o.Matcher != nil && o.Matcher.SkipDir(rel)
}
