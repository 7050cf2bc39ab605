// ABOUTME: XDG-based data and config directory resolution for campaigndash.
// ABOUTME: Checks XDG_DATA_HOME / XDG_CONFIG_HOME, falls back to ~/.local/share/campaigndash and ~/.config/campaigndash.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "campaigndash"

// DefaultDataDir returns the directory for persistent state such as the
// sqlite handoff database and log file.
func DefaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", appName), nil
}

// DefaultConfigDir returns the directory holding config.yaml.
func DefaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".config", appName), nil
}

// DiscoverPath picks the config file: an explicit flag value, then
// CAMPAIGNDASH_CONFIG, then config.yaml in the default config dir.
func DiscoverPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if envPath := os.Getenv("CAMPAIGNDASH_CONFIG"); envPath != "" {
		return envPath
	}
	dir, err := DefaultConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}
