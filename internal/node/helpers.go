package node

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// logFilePath returns the configured log file, or artdressupd.log in
// the network's logs directory.
func logFilePath(configured, logsDir string) (string, error) {
	if configured != "" {
		return expandHome(configured), nil
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(logsDir, "artdressupd.log"), nil
}
