package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultRuntimeDir = ".campusbot"

// GetRuntimePath is the directory holding .env, providers.yaml and the
// attempt ledger. It is read before .env is loaded.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("CAMPUS_RUNTIME_PATH"))
}

// resolveRuntimePath expands "~/" and anchors relative paths at the home dir.
func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimeDir
	}
	path = strings.TrimPrefix(path, "~/")

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
