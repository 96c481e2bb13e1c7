package logging

import (
	"os"
	"path/filepath"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// DefaultLogDir returns the default log directory (~/.navindex/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".navindex", "logs")
	}
	return filepath.Join(home, ".navindex", "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "navindex.log")
}

// FindLogFile locates the log file for `navindex logs`.
// An explicit path wins; otherwise the default path must exist.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", naverrors.IOError("find log file", explicit, err)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err != nil {
		return "", naverrors.IOError("find log file", path, err).
			WithSuggestion("Run a command with --debug first, e.g. 'navindex --debug index'")
	}
	return path, nil
}
