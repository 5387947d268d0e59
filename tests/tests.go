// Package tests holds helpers shared by the integration and end-to-end suites.
package tests

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errRootNotFound = errors.New("go.mod not found")

// FindProjectRoot walks up from the working directory to the directory holding go.mod.
func FindProjectRoot() (string, error) {
	const op = "tests.FindProjectRoot"

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("%s: failed to get working directory: %w", op, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s: %w", op, errRootNotFound)
		}
		dir = parent
	}
}
