// Package toolpath decides which ffmpeg binary an operation runs.
//
// Lookup order: an explicitly configured path, then the copy installed by
// "framegrab ffmpeg install" in the install directory, then "ffmpeg" on PATH.
package toolpath

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Source records where a binary was found.
type Source string

const (
	SourceConfigured Source = "configured"
	SourceInstalled  Source = "installed"
	SourcePath       Source = "PATH"
	SourceNone       Source = "none"
)

// Status describes the resolved binary.
type Status struct {
	Command   string
	Source    Source
	Available bool
	Detail    string
}

// BinaryName is the platform file name of ffmpeg.
func BinaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// InstalledPath is where the provisioner puts ffmpeg inside installDir.
func InstalledPath(installDir string) string {
	return filepath.Join(installDir, BinaryName())
}

// DefaultInstallDir is the per-user install location.
func DefaultInstallDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "framegrab", "bin")
	}
	return filepath.Join(".cache", "framegrab", "bin")
}

// Resolve picks the binary to run. It never fails: when nothing is found the
// status carries the bare command name with Available=false, so the spawn
// later reports the real error.
func Resolve(configured, installDir string) Status {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		st := Status{Command: configured, Source: SourceConfigured}
		if resolved, err := exec.LookPath(configured); err == nil {
			st.Command = resolved
			st.Available = true
		} else {
			st.Detail = fmt.Sprintf("configured binary %q not found", configured)
		}
		return st
	}

	if installDir != "" {
		candidate := InstalledPath(installDir)
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return Status{Command: candidate, Source: SourceInstalled, Available: true}
		}
	}

	name := BinaryName()
	if resolved, err := exec.LookPath(name); err == nil {
		return Status{Command: resolved, Source: SourcePath, Available: true}
	}
	return Status{
		Command: name,
		Source:  SourceNone,
		Detail:  fmt.Sprintf("binary %q not found", name),
	}
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
