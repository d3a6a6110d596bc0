// Package paths resolves file locations given in configuration and flags.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DatabaseFile is the file name used when a database path names a directory.
const DatabaseFile = "bytechef.db"

// ExpandHome replaces a leading "~" with the user's home directory.
// Paths that do not start with "~" are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// ResolveDatabasePath normalizes a database location. A path ending in
// ".db" names the file itself; anything else is a directory that holds
// DatabaseFile. An empty path means the current directory.
func ResolveDatabasePath(path string) string {
	path = ExpandHome(path)
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)
	if strings.EqualFold(filepath.Ext(path), ".db") {
		return path
	}
	return filepath.Join(path, DatabaseFile)
}
