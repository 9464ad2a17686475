package util

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Stem returns the base name of a path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CleanupGlob removes every file matching the pattern, ignoring
// per-file errors. Returns the number of files removed.
func CleanupGlob(pattern string) int {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range matches {
		if os.Remove(path) == nil {
			removed++
		}
	}
	return removed
}
