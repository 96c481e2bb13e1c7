package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

const (
	// MaxBackups is the maximum number of config backups to keep
	MaxBackups = 3

	// BackupSuffix is the file extension for backup files
	BackupSuffix = ".bak"
)

// BackupFile creates a timestamped copy of a config file before it is
// overwritten (`config init --force`). Returns the backup path, or "" when
// there is nothing to back up.
func BackupFile(configPath string) (string, error) {
	if !fileExists(configPath) {
		return "", nil
	}

	timestamp := time.Now().Format("20060102-150405.000")
	backupPath := fmt.Sprintf("%s%s.%s", configPath, BackupSuffix, timestamp)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", naverrors.IOError("read config for backup", configPath, err)
	}
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", naverrors.IOError("write backup", backupPath, err)
	}

	// The backup succeeded; pruning is best-effort.
	_ = cleanupOldBackups(configPath)

	return backupPath, nil
}

// ListBackups returns the backups of configPath, newest first.
func ListBackups(configPath string) ([]string, error) {
	configDir := filepath.Dir(configPath)
	prefix := filepath.Base(configPath) + BackupSuffix + "."

	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, naverrors.IOError("list", configDir, err)
	}

	var backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(configDir, entry.Name()))
		}
	}

	// Timestamps sort lexically; newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// cleanupOldBackups removes backups beyond MaxBackups, keeping the newest.
func cleanupOldBackups(configPath string) error {
	backups, err := ListBackups(configPath)
	if err != nil {
		return err
	}
	if len(backups) <= MaxBackups {
		return nil
	}
	for _, backup := range backups[MaxBackups:] {
		// Best effort - continue removing others
		_ = os.Remove(backup)
	}
	return nil
}
