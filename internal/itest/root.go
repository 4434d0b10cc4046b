//go:build integration

package itest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
)

const modulePath = "github.com/forPelevin/framegrab"

// findRepoRoot walks up from the working directory to the go.mod declaring
// this module, so "go run ./cmd/framegrab" resolves no matter which package
// directory the tests run in.
func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		b, err := os.ReadFile(filepath.Join(wd, "go.mod"))
		if err == nil && bytes.Contains(b, []byte("module "+modulePath)) {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "", errors.New("could not locate go.mod for " + modulePath)
		}
		wd = parent
	}
}
