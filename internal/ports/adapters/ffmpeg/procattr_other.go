//go:build !windows

package ffmpeg

import "os/exec"

// No console windows to hide outside Windows.
func applyProcAttr(*exec.Cmd, bool) {}
