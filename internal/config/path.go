// Package config loads the moodlet settings from flags, environment, .env and
// config files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading ~ to the home directory and then expands
// $VAR references. The path is returned unchanged when home is unknown.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return ""
	case path == "~", strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
			path = filepath.Clean(path)
		}
	}
	return os.ExpandEnv(path)
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string, perm os.FileMode) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
