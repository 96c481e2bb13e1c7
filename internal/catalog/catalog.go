// Package catalog gives shared read-only access to navigator artifacts.
// Loaded artifacts are immutable, so one instance is handed to every caller
// until the file on disk changes.
package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

// DefaultSize is the number of artifacts kept when none is configured.
const DefaultSize = 8

// identity pins a cached artifact to one version of its file.
type identity struct {
	size    int64
	modTime int64 // unix nanoseconds
}

type cached struct {
	id       identity
	artifact *navigator.Artifact
}

// Catalog caches loaded artifacts by absolute path. A cached artifact is
// served while the file's size and modification time are unchanged;
// otherwise it is reloaded. Concurrent opens of the same path share one load.
type Catalog struct {
	cache  *lru.Cache[string, cached]
	group  singleflight.Group
	logger *slog.Logger
}

// New creates a catalog holding up to size artifacts.
func New(size int, logger *slog.Logger) (*Catalog, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, cached](size)
	if err != nil {
		return nil, naverrors.InternalError("failed to create artifact cache", err)
	}
	return &Catalog{cache: cache, logger: logger}, nil
}

// Open returns the artifact at path, loading it if it is not cached or the
// file changed since it was cached.
func (c *Catalog) Open(ctx context.Context, path string) (*navigator.Artifact, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, naverrors.New(naverrors.ErrCodeInvalidPath, "failed to get absolute path", err).
			WithDetail("path", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := stat(abs)
	if err != nil {
		c.cache.Remove(abs)
		return nil, err
	}
	if hit, ok := c.cache.Get(abs); ok && hit.id == id {
		return hit.artifact, nil
	}

	// Keyed by identity too, so a load of an older version is never shared
	// with a caller that saw the new one.
	key := abs + "\x00" + strconv.FormatInt(id.size, 10) + "\x00" + strconv.FormatInt(id.modTime, 10)
	v, err, shared := c.group.Do(key, func() (any, error) {
		a, err := navigator.LoadIndex(abs)
		if err != nil {
			return nil, err
		}
		c.cache.Add(abs, cached{id: id, artifact: a})
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("artifact loaded",
		slog.String("path", abs),
		slog.Int64("size", id.size),
		slog.Bool("shared", shared))
	return v.(*navigator.Artifact), nil
}

// Invalidate drops path from the cache.
func (c *Catalog) Invalidate(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		c.cache.Remove(abs)
	}
}

// Len returns the number of cached artifacts.
func (c *Catalog) Len() int {
	return c.cache.Len()
}

func stat(abs string) (identity, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return identity{}, naverrors.IOError("stat", abs, err)
	}
	return identity{size: info.Size(), modTime: info.ModTime().UnixNano()}, nil
}
