package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
	isDir   bool
}

func (w *Watcher) runPolling(ctx context.Context) error {
	state := w.snapshot()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return nil
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			state = w.diff(state, w.snapshot())
		}
	}
}

// snapshot records every non-skipped path under the root, plus the config
// files above it.
func (w *Watcher) snapshot() map[string]fileSnapshot {
	opts, root := w.current()
	state := make(map[string]fileSnapshot)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		if d.IsDir() && opts.skipDir(rel) {
			return filepath.SkipDir
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		state[rel] = fileSnapshot{modTime: info.ModTime(), size: info.Size(), isDir: d.IsDir()}
		return nil
	})
	for _, rel := range opts.configRels {
		if !outsideRoot(rel) {
			continue
		}
		if info, err := os.Stat(filepath.Join(root, rel)); err == nil && !info.IsDir() {
			state[rel] = fileSnapshot{modTime: info.ModTime(), size: info.Size()}
		}
	}
	return state
}

// diff reports changes between two snapshots and returns the newer one.
func (w *Watcher) diff(prev, cur map[string]fileSnapshot) map[string]fileSnapshot {
	for rel, s := range cur {
		old, existed := prev[rel]
		switch {
		case !existed:
			w.add(rel, s.isDir, OpCreate)
		case !s.isDir && (!old.modTime.Equal(s.modTime) || old.size != s.size):
			w.add(rel, false, OpModify)
		}
	}
	for rel, s := range prev {
		if _, ok := cur[rel]; !ok {
			w.add(rel, s.isDir, OpDelete)
		}
	}
	return cur
}
