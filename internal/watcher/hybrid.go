package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Watcher reports debounced batches of relevant changes under a root,
// through fsnotify or, when that is unavailable, by polling.
type Watcher struct {
	mu        sync.RWMutex
	opts      Options
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	errors    chan error
	stopCh    chan struct{}
	stopOnce  sync.Once
	root      string
}

// New creates a watcher. fsnotify is tried first unless ForcePolling is set.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()
	w := &Watcher{
		opts:      opts,
		debouncer: NewDebouncer(opts.Debounce, opts.EventBufferSize),
		errors:    make(chan error, 8),
		stopCh:    make(chan struct{}),
	}
	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Warn("fsnotify unavailable, falling back to polling", slog.String("error", err.Error()))
		} else {
			w.fsw = fsw
		}
	}
	return w, nil
}

// Mode returns "fsnotify" or "polling".
func (w *Watcher) Mode() string {
	if w.fsw != nil {
		return "fsnotify"
	}
	return "polling"
}

// Start watches root until ctx is done or Stop is called. It blocks.
func (w *Watcher) Start(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return naverrors.New(naverrors.ErrCodeInvalidPath, "failed to get absolute path", err).
			WithDetail("path", root)
	}
	rels, err := relativeTo(abs, w.opts.ConfigFiles)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.root = abs
	w.opts.configRels = rels
	w.mu.Unlock()

	if w.fsw != nil {
		if err := w.addTree(abs, false); err != nil {
			return err
		}
		if err := w.addConfigDirs(abs, rels); err != nil {
			return err
		}
		return w.runFsnotify(ctx)
	}
	return w.runPolling(ctx)
}

// Reconfigure swaps the matcher and curation file of a running watcher.
// In fsnotify mode, directories the new matcher no longer skips are added.
func (w *Watcher) Reconfigure(m Matcher, curationFile string) error {
	w.mu.Lock()
	w.opts.Matcher = m
	w.opts.CurationFile = curationFile
	root := w.root
	w.mu.Unlock()

	if w.fsw == nil || root == "" {
		return nil
	}
	return w.addTree(root, false)
}

func (w *Watcher) current() (Options, string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.opts, w.root
}

func relativeTo(root string, paths []string) ([]string, error) {
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, naverrors.New(naverrors.ErrCodeInvalidPath, "failed to get absolute path", err).
				WithDetail("path", p)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, naverrors.New(naverrors.ErrCodeInvalidPath, "config file not relative to the watched root", err).
				WithDetail("path", p)
		}
		rels = append(rels, filepath.Clean(rel))
	}
	return rels, nil
}

// addConfigDirs watches the directories of config files above the root.
// Only the config files themselves are reported from them.
func (w *Watcher) addConfigDirs(root string, rels []string) error {
	added := make(map[string]bool)
	for _, rel := range rels {
		if !outsideRoot(rel) {
			continue
		}
		dir := filepath.Dir(filepath.Join(root, rel))
		if added[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return naverrors.IOError("watch", dir, err)
		}
		added[dir] = true
	}
	return nil
}

func (w *Watcher) runFsnotify(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return nil
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	opts, root := w.current()
	rel, err := filepath.Rel(root, ev.Name)
	if err != nil {
		return
	}
	isDir := false
	if info, err := os.Stat(ev.Name); err == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreate
		if isDir && !outsideRoot(rel) && !opts.skipDir(rel) {
			// Files may land in a new directory before it is watched.
			_ = w.addTree(ev.Name, true)
		}
	case ev.Has(fsnotify.Write):
		op = OpModify
	case ev.Has(fsnotify.Remove):
		op = OpDelete
	case ev.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}
	w.add(rel, isDir, op)
}

// addTree watches dir and its subdirectories. With announce, files already
// present are reported as created.
func (w *Watcher) addTree(dir string, announce bool) error {
	opts, root := w.current()
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if !d.IsDir() {
			if announce {
				w.add(rel, false, OpCreate)
			}
			return nil
		}
		if opts.skipDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return naverrors.IOError("watch", path, err)
		}
		return nil
	})
}

func (w *Watcher) add(rel string, isDir bool, op Operation) {
	opts, _ := w.current()
	op, ok := opts.classify(rel, isDir, op)
	if !ok {
		return
	}
	w.debouncer.Add(FileEvent{Path: rel, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

func (w *Watcher) emitError(err error) {
	select {
	case <-w.stopCh:
	case w.errors <- err:
	default:
	}
}

// Events returns the channel of debounced batches. It is closed by Stop.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors. It is never closed.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop releases resources and closes Events. Safe to call multiple times.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.debouncer.Stop()
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	return err
}
