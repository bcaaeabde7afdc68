// Package config holds the filesystem path helpers shared by the CLI
// commands, covering user-supplied locations like the database path.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a user-supplied path. A leading ~ becomes the current
// user's home directory and $VAR references expand from the environment; an
// unresolvable home leaves the path untouched.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
