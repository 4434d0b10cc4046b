package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceNotFound is returned before any argument is built when the source
// path does not name an existing regular file.
var ErrSourceNotFound = errors.New("source not found")

// SpawnError means the tool could not be started. It is terminal for the
// operation.
type SpawnError struct {
	Bin string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Bin, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// StreamError means reading the tool's output failed after a successful
// spawn.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("read tool output: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// DiagnosticsError carries the Error/Fatal lines reported by the tool, in
// arrival order.
type DiagnosticsError struct {
	Messages []string
}

func (e *DiagnosticsError) Error() string {
	return strings.Join(e.Messages, MessageSeparator)
}

// InstallError reports the provisioning step that failed. Stage is one of
// resolve, prepare, lock, download, unpack, install or verify.
type InstallError struct {
	Stage string
	Err   error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install ffmpeg (%s): %v", e.Stage, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }
