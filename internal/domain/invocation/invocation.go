// Package invocation builds the ordered ffmpeg argument lists for frame and
// clip extraction.
package invocation

import (
	"fmt"
	"os"
	"strings"

	"github.com/forPelevin/framegrab/internal/domain/crop"
	"github.com/forPelevin/framegrab/internal/types"
)

// Invocation is an immutable argument list plus the process-creation flags
// that cannot be expressed as arguments.
type Invocation struct {
	// HideWindow asks the supervisor to create the process without a console
	// window. Only meaningful on Windows.
	HideWindow bool
	args       []string
}

// Args returns a copy of the argument list.
func (i Invocation) Args() []string {
	return append([]string(nil), i.args...)
}

// String renders the arguments as a shell-quoted command line.
func (i Invocation) String() string {
	return Join(i.args...)
}

// Join shell-quotes args and joins them with spaces. Used for logs and
// --dry-run output only; nothing is executed through a shell.
func Join(args ...string) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

// Lossless still-image settings. Not user tunable.
var stillQuality = []string{
	"-compression_level", "0",
	"-quality", "100",
	"-qscale:v", "1",
	"-qmin", "1",
	"-qmax", "1",
}

// BuildFrame builds a single-frame extraction. The seek precedes the input so
// ffmpeg seeks by keyframe instead of decoding up to the target.
func BuildFrame(req types.FrameRequest) (Invocation, error) {
	if err := checkSource(req.Source); err != nil {
		return Invocation{}, err
	}

	args := []string{
		"-y",
		"-hwaccel", "auto",
		"-an",
		"-vsync", "0",
		"-ss", req.Time,
		"-i", req.Source,
		"-update", "1",
		"-frames:v", "1",
	}
	args = append(args, stillQuality...)
	if filter, ok := crop.BuildFilter(req.Crop, false); ok {
		args = append(args, "-vf", filter)
	}
	args = append(args, req.Dest)

	return Invocation{HideWindow: true, args: args}, nil
}

// BuildClip builds a trimmed clip extraction. Audio is dropped unless
// KeepAudio is set; the crop, if any, is padded to even dimensions.
func BuildClip(req types.ClipRequest) (Invocation, error) {
	if err := checkSource(req.Source); err != nil {
		return Invocation{}, err
	}

	args := []string{
		"-y",
		"-hwaccel", "auto",
	}
	if !req.KeepAudio {
		args = append(args, "-an")
	}
	args = append(args,
		"-vsync", "0",
		"-ss", req.Start,
		"-t", req.Duration,
		"-i", req.Source,
	)
	if filter, ok := crop.BuildFilter(req.Crop, true); ok {
		args = append(args, "-vf", filter)
	}
	args = append(args, req.Dest)

	return Invocation{HideWindow: true, args: args}, nil
}

func checkSource(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", types.ErrSourceNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrSourceNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", types.ErrSourceNotFound, path)
	}
	return nil
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`;&|*?()<>[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
