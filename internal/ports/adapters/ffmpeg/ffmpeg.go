package ffmpeg

import (
	"context"
	"io"
	"os/exec"

	"github.com/forPelevin/framegrab/internal/domain/invocation"
	"github.com/forPelevin/framegrab/internal/ports"
)

// Preamble is prepended to every invocation. The level tags it turns on are
// what Classifier keys on.
var Preamble = []string{
	"-hide_banner",
	"-nostdin",
	"-loglevel", "level+info",
	"-stats",
}

type Adapter struct {
	ffmpeg     string
	classifier ports.LineClassifier
}

// New returns an adapter running the binary at ffmpegPath. The path is
// resolved once by the caller (see toolpath) and never looked up again.
func New(ffmpegPath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{ffmpeg: ffmpegPath, classifier: Classifier{}}
}

// WithClassifier returns a copy of the adapter using c for output lines.
func (a *Adapter) WithClassifier(c ports.LineClassifier) *Adapter {
	cp := *a
	cp.classifier = c
	return &cp
}

func (a *Adapter) Binary() string { return a.ffmpeg }

// Prepare returns a Built process for inv. Nothing is started.
func (a *Adapter) Prepare(inv invocation.Invocation) *Process {
	return newProcess(a.ffmpeg, Preamble, inv, a.classifier)
}

// Start prepares and spawns inv.
func (a *Adapter) Start(ctx context.Context, inv invocation.Invocation) (ports.EventStream, error) {
	p := a.Prepare(inv)
	if err := p.Spawn(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// IsInstalled reports whether "<ffmpeg> -version" can be started. The exit
// status is not consulted.
func (a *Adapter) IsInstalled(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, a.ffmpeg, "-version")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	applyProcAttr(cmd, true)
	if err := cmd.Start(); err != nil {
		return false
	}
	_ = cmd.Wait()
	return true
}
