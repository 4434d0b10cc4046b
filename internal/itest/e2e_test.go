//go:build integration

package itest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/forPelevin/framegrab/internal/config"
	"github.com/forPelevin/framegrab/internal/pipeline"
	"github.com/forPelevin/framegrab/internal/types"
)

func integrationConfig(t *testing.T) pipeline.Config {
	t.Helper()
	base := config.Default()
	base.FFmpegPath = "ffmpeg"
	base.InstallDir = filepath.Join(t.TempDir(), "bin")
	return pipeline.Config{Config: base, Logger: zaptest.NewLogger(t)}
}

func TestE2E_Frame(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")
	makeFixture(t, in)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tests := []struct {
		name       string
		crop       types.CropRect
		wantWidth  int
		wantHeight int
	}{
		{name: "full frame", crop: types.FullFrame(), wantWidth: 640, wantHeight: 360},
		{name: "centre quarter", crop: types.CropRect{X: "0.25", Y: "0.25", W: "0.5", H: "0.5"}, wantWidth: 320, wantHeight: 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(tmp, strings.ReplaceAll(tt.name, " ", "-")+".png")
			rep, err := pipeline.ExtractFrame(ctx, integrationConfig(t), types.FrameRequest{
				Source: in,
				Dest:   out,
				Time:   "00:00:01.5",
				Crop:   tt.crop,
			})
			if err != nil {
				t.Fatalf("extract frame: %v", err)
			}
			if !rep.Outcome.OK() {
				t.Fatalf("unexpected outcome: %s", rep.Outcome)
			}
			info, err := probe(out)
			if err != nil {
				t.Fatalf("probe: %v", err)
			}
			if info.width != tt.wantWidth || info.height != tt.wantHeight {
				t.Fatalf("expected %dx%d, got %dx%d", tt.wantWidth, tt.wantHeight, info.width, info.height)
			}
		})
	}
}

func TestE2E_Clip(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")
	makeFixture(t, in)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	out := filepath.Join(tmp, "clip.mp4")
	// 0.33*640 and 0.33*360 round to odd sizes; the clip must come out even.
	rep, err := pipeline.ExtractClip(ctx, integrationConfig(t), types.ClipRequest{
		Source:   in,
		Dest:     out,
		Start:    "1",
		Duration: "2",
		Crop:     types.CropRect{X: "0.1", Y: "0.1", W: "0.33", H: "0.33"},
	})
	if err != nil {
		t.Fatalf("extract clip: %v", err)
	}
	if !rep.Outcome.OK() {
		t.Fatalf("unexpected outcome: %s", rep.Outcome)
	}
	info, err := probe(out)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if info.width%2 != 0 || info.height%2 != 0 {
		t.Fatalf("expected even dimensions, got %dx%d", info.width, info.height)
	}
	if info.width < 210 || info.width > 212 || info.height < 118 || info.height > 120 {
		t.Fatalf("expected about 212x120 after padding, got %dx%d", info.width, info.height)
	}
	if info.hasAudio {
		t.Fatalf("expected audio to be dropped")
	}
	if info.duration < 1.5 || info.duration > 2.5 {
		t.Fatalf("expected ~2s clip, got %.2fs", info.duration)
	}

	keep := filepath.Join(tmp, "clip-audio.mp4")
	if _, err := pipeline.ExtractClip(ctx, integrationConfig(t), types.ClipRequest{
		Source:    in,
		Dest:      keep,
		Start:     "0",
		Duration:  "1",
		KeepAudio: true,
		Crop:      types.FullFrame(),
	}); err != nil {
		t.Fatalf("extract clip with audio: %v", err)
	}
	info, err = probe(keep)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !info.hasAudio {
		t.Fatalf("expected audio to be kept")
	}
}

func TestE2E_ToolDiagnostics(t *testing.T) {
	tmp := t.TempDir()
	notMedia := filepath.Join(tmp, "not-media.mp4")
	if err := os.WriteFile(notMedia, []byte("definitely not a video\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rep, err := pipeline.ExtractFrame(ctx, integrationConfig(t), types.FrameRequest{
		Source: notMedia,
		Dest:   filepath.Join(tmp, "out.png"),
		Time:   "0",
		Crop:   types.FullFrame(),
	})
	var diag *types.DiagnosticsError
	if !errors.As(err, &diag) {
		t.Fatalf("expected DiagnosticsError, got %v", err)
	}
	if !strings.Contains(rep.Outcome.String(), "Invalid data found when processing input") {
		t.Fatalf("unexpected diagnostics: %s", rep.Outcome)
	}
	if _, err := os.Stat(filepath.Join(tmp, "out.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err=%v", err)
	}
}
