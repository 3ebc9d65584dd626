package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName = "nutrilog"
	dbFileName = "nutrilog.db"
)

// DefaultDBPath is the SQLite file used when neither --db nor NUTRILOG_DB_PATH is set.
func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
