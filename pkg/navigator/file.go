package navigator

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/renameio"
	"lukechampine.com/blake3"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// WriteFile encodes a and replaces path with it atomically: readers see
// either the previous file or the complete new one, never a partial write.
// Concurrent writers of the same path are serialized with a cross-process
// lock kept in the system temp directory, so nothing but the artifact is
// left beside it.
func WriteFile(path string, a *Artifact) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return naverrors.IOError("resolve", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return naverrors.IOError("create directory for", path, err)
	}

	lock := flock.New(lockPathFor(abs))
	if err := lock.Lock(); err != nil {
		return naverrors.IOError("lock", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	pending, err := renameio.TempFile("", abs)
	if err != nil {
		return naverrors.IOError("create temp file for", path, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return naverrors.IOError("write", path, err)
	}
	if err := pending.Chmod(0o644); err != nil {
		return naverrors.IOError("chmod", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return naverrors.IOError("replace", path, err)
	}

	slog.Debug("navigator index written", slog.String("path", abs), slog.Int("bytes", len(data)))
	return nil
}

// LoadIndex reads and decodes the artifact at path in one piece.
func LoadIndex(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, naverrors.IOError("read", path, err)
	}
	a, err := Decode(data)
	if err != nil {
		if ne, ok := naverrors.As(err); ok {
			ne.WithDetail("path", path)
		}
		return nil, err
	}
	slog.Debug("navigator index loaded", slog.String("path", path), slog.Int("items", a.Len()))
	return a, nil
}

func lockPathFor(abs string) string {
	sum := blake3.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), fmt.Sprintf("navindex-%s.lock", hex.EncodeToString(sum[:8])))
}
