// ABOUTME: Loads environment variables from .env files at startup.
// ABOUTME: Sets variables only when not already present in the environment (no clobber).
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads one .env file without overriding existing variables.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// LoadDotEnvAuto loads .env files from common locations. Search order:
//  1. .env in the current directory and its parents
//  2. .env next to the current executable
//
// Earlier files win because later ones never clobber. Returns the files that
// were read.
func LoadDotEnvAuto() []string {
	seen := map[string]bool{}
	var loaded []string

	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		if _, err := os.Stat(p); err != nil {
			return
		}
		if LoadDotEnv(p) == nil {
			loaded = append(loaded, p)
		}
	}

	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for {
			add(filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if exe, err := os.Executable(); err == nil {
		add(filepath.Join(filepath.Dir(exe), ".env"))
	}
	return loaded
}
