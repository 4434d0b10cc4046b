//go:build windows

package ffmpeg

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

func applyProcAttr(cmd *exec.Cmd, hideWindow bool) {
	if !hideWindow {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
