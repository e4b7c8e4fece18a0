// Package storage provides persistent storage for user preferences and
// finished-game statistics. Games in progress are never stored.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessgame"

// baseDir returns the per-user application data root for goos:
// - macOS: ~/Library/Application Support
// - Windows: %APPDATA% (or ~/AppData/Roaming)
// - Linux and other Unix-like: $XDG_DATA_HOME (or ~/.local/share)
func baseDir(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	fromHome := func(elem ...string) (string, error) {
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("home directory: %w", err)
		}
		return filepath.Join(append([]string{h}, elem...)...), nil
	}

	switch goos {
	case "darwin":
		return fromHome("Library", "Application Support")
	case "windows":
		if dir := getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return fromHome("AppData", "Roaming")
	default:
		if dir := getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		return fromHome(".local", "share")
	}
}

// GetDataDir returns the platform-specific data directory for the
// application, creating it if needed.
func GetDataDir() (string, error) {
	base, err := baseDir(runtime.GOOS, os.Getenv, os.UserHomeDir)
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(base, appName))
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, "db"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
