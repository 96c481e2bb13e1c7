package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// RotatingWriter is an io.Writer that rotates its file by size:
// navindex.log -> navindex.log.1 -> ... -> navindex.log.<maxFiles>, oldest dropped.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu       sync.Mutex
	file     *os.File
	written  int64
	syncEach bool
}

// NewRotatingWriter opens (or creates) path for appending, creating its
// directory as needed. Every write is synced so `navindex logs -f` sees it
// immediately; SetSyncEachWrite(false) turns that off.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if maxSizeMB < 1 {
		maxSizeMB = 1
	}
	if maxFiles < 1 {
		maxFiles = 1
	}
	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) << 20,
		maxFiles: maxFiles,
		syncEach: true,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, naverrors.IOError("create log directory", filepath.Dir(path), err)
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetSyncEachWrite toggles the fsync after every write.
func (w *RotatingWriter) SetSyncEachWrite(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncEach = enabled
}

// Write implements io.Writer. A failed rotation is reported on stderr and
// the write goes to the current file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize && w.written > 0 {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	if w.syncEach && err == nil {
		_ = w.file.Sync()
	}
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return naverrors.IOError("open log file", w.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return naverrors.IOError("stat log file", w.path, err)
	}
	w.file = f
	w.written = info.Size()
	return nil
}

// rotate shifts every numbered file up by one, drops those past maxFiles,
// moves the live file to .1 and reopens a fresh one.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return naverrors.IOError("close log file", w.path, err)
		}
		w.file = nil
	}

	for _, gen := range w.generations() {
		if gen >= w.maxFiles {
			_ = os.Remove(w.generationPath(gen))
			continue
		}
		_ = os.Rename(w.generationPath(gen), w.generationPath(gen+1))
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.generationPath(1)); err != nil {
			return naverrors.IOError("rotate log file", w.path, err)
		}
	}

	w.written = 0
	return w.open()
}

// generations lists the numeric suffixes of rotated files, highest first,
// so renames never overwrite a file that has not moved yet.
func (w *RotatingWriter) generations() []int {
	base := filepath.Base(w.path) + "."
	entries, err := os.ReadDir(filepath.Dir(w.path))
	if err != nil {
		return nil
	}
	var gens []int
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), base)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > 0 {
			gens = append(gens, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(gens)))
	return gens
}

func (w *RotatingWriter) generationPath(n int) string {
	return w.path + "." + strconv.Itoa(n)
}
