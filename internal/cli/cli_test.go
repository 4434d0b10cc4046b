package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/forPelevin/framegrab/internal/types"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return p
}

func TestParseCrop(t *testing.T) {
	tests := []struct {
		in      string
		want    types.CropRect
		wantErr string
	}{
		{in: "", want: types.FullFrame()},
		{in: "0.25, 0.1,0.5,0.8", want: types.CropRect{X: "0.25", Y: "0.1", W: "0.5", H: "0.8"}},
		{in: "0.7,0.7,0.3,0.3", want: types.CropRect{X: "0.7", Y: "0.7", W: "0.3", H: "0.3"}},
		{in: "0,0,1", wantErr: "want x,y,w,h"},
		{in: "a,0,1,1", wantErr: "not a number"},
		{in: "0,0,1.5,1", wantErr: "outside [0,1]"},
		{in: "0,0,0,1", wantErr: "must be > 0"},
		{in: "0.6,0,0.5,1", wantErr: "exceeds the frame"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCrop(tt.in)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseCrop(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFrame_DryRunPrintsCommand(t *testing.T) {
	src := writeSource(t)
	out, _, err := execute(t,
		"frame", src, filepath.Join(t.TempDir(), "out.png"),
		"--time", "00:00:02.5",
		"--crop", "0,0,0.5,0.5",
		"--dry-run",
		"--ffmpeg", "/opt/fake/ffmpeg",
		"--install-dir", t.TempDir(),
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{
		"/opt/fake/ffmpeg -hide_banner -nostdin -loglevel level+info -stats",
		"-ss 00:00:02.5 -i " + src,
		"'crop=floor(iw*0.5+0.5):floor(ih*0.5+0.5):floor(iw*0+0.5):floor(ih*0+0.5)'",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestClip_DryRunKeepAudioPadsCrop(t *testing.T) {
	out, _, err := execute(t,
		"clip", writeSource(t), filepath.Join(t.TempDir(), "out.mp4"),
		"--start", "5", "--duration", "2", "--keep-audio",
		"--crop", "0.1,0.1,0.5,0.5",
		"--dry-run", "--ffmpeg", "/opt/fake/ffmpeg", "--install-dir", t.TempDir(),
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(out, " -an ") {
		t.Fatalf("--keep-audio must not drop audio:\n%s", out)
	}
	if !strings.Contains(out, "pad=ceil(iw/2)*2:ceil(ih/2)*2") {
		t.Fatalf("expected even padding in clip crop:\n%s", out)
	}
}

func TestArgumentValidation(t *testing.T) {
	src := writeSource(t)
	dir := t.TempDir()
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "frame needs two args", args: []string{"frame", src}, wantErr: "accepts 2 arg(s)"},
		{name: "clip needs duration", args: []string{"clip", src, "o.mp4"}, wantErr: `required flag(s) "duration" not set`},
		{name: "bad crop", args: []string{"frame", src, "o.png", "--crop", "1,1"}, wantErr: "--crop"},
		{name: "bad log level", args: []string{"frame", src, "o.png", "--log-level", "loud", "--install-dir", dir}, wantErr: "config: log_level"},
		{name: "missing config file", args: []string{"ffmpeg", "status", "--config", filepath.Join(dir, "nope.toml")}, wantErr: "stat config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFrame_MissingSource(t *testing.T) {
	_, _, err := execute(t,
		"frame", filepath.Join(t.TempDir(), "missing.mp4"), "o.png",
		"--ffmpeg", "/opt/fake/ffmpeg", "--install-dir", t.TempDir(), "--log-level", "error",
	)
	if !errors.Is(err, types.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestFFmpegStatus_ConfigFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	cfgPath := filepath.Join(dir, "framegrab.toml")
	body := "ffmpeg_path = \"" + bin + "\"\ninstall_dir = \"" + filepath.Join(dir, "bin") + "\"\nlog_level = \"error\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := execute(t, "ffmpeg", "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{bin, "configured", "true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output:\n%s", want, out)
		}
	}
}
