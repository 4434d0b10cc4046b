//go:build integration

package itest

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"testing"
)

type videoInfo struct {
	width    int
	height   int
	hasAudio bool
	duration float64
}

func probe(path string) (videoInfo, error) {
	var info videoInfo

	out, err := ffprobe(path,
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0:s=x",
	)
	if err != nil {
		return info, err
	}
	if _, err := fmt.Sscanf(out, "%dx%d", &info.width, &info.height); err != nil {
		return info, fmt.Errorf("parse dimensions %q: %w", out, err)
	}

	out, err = ffprobe(path,
		"-select_streams", "a",
		"-show_entries", "stream=index",
		"-of", "csv=p=0",
	)
	if err != nil {
		return info, err
	}
	info.hasAudio = out != ""

	out, err = ffprobe(path,
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
	)
	if err != nil {
		return info, err
	}
	if out != "N/A" && out != "" {
		sec, err := strconv.ParseFloat(out, 64)
		if err != nil {
			return info, fmt.Errorf("parse duration %q: %w", out, err)
		}
		info.duration = sec
	}
	return info, nil
}

func ffprobe(path string, args ...string) (string, error) {
	full := append([]string{"-v", "error"}, args...)
	full = append(full, path)
	b, err := exec.Command("ffprobe", full...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	return strings.TrimSpace(string(b)), nil
}

// makeFixture renders a 4s 640x360 test pattern with a sine audio track.
func makeFixture(t *testing.T, path string) {
	t.Helper()
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi", "-i", "testsrc=size=640x360:rate=25:duration=4",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=4",
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		path,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
}
