package usecase

import (
	"context"
	"fmt"

	"github.com/forPelevin/framegrab/internal/domain/invocation"
	"github.com/forPelevin/framegrab/internal/domain/verdict"
	"github.com/forPelevin/framegrab/internal/ports"
	"github.com/forPelevin/framegrab/internal/types"
)

type Deps struct {
	Video ports.Transcoder
	Probe ports.ToolProbe
	Tool  ports.Provisioner
}

type Options struct {
	// StrictExit turns a non-zero exit status into a failure even when the
	// tool logged no error line. Off by default: only log severities count.
	StrictExit bool
}

type Usecase struct {
	d    Deps
	opts Options
}

func New(d Deps, opts Options) Usecase { return Usecase{d: d, opts: opts} }

type Result struct {
	Outcome types.Outcome
	Exit    types.ExitStatus
	Args    []string
}

// ExtractFrame writes a single still frame. A failed outcome is returned both
// in Result and as a *types.DiagnosticsError.
func (u Usecase) ExtractFrame(ctx context.Context, req types.FrameRequest) (Result, error) {
	inv, err := invocation.BuildFrame(req)
	if err != nil {
		return Result{}, err
	}
	return u.run(ctx, inv)
}

// ExtractClip writes a trimmed clip.
func (u Usecase) ExtractClip(ctx context.Context, req types.ClipRequest) (Result, error) {
	inv, err := invocation.BuildClip(req)
	if err != nil {
		return Result{}, err
	}
	return u.run(ctx, inv)
}

func (u Usecase) CheckTool(ctx context.Context) bool {
	return u.d.Probe.IsInstalled(ctx)
}

func (u Usecase) InstallTool(ctx context.Context) error {
	return u.d.Tool.EnsureInstalled(ctx)
}

func (u Usecase) run(ctx context.Context, inv invocation.Invocation) (Result, error) {
	res := Result{Args: inv.Args()}

	stream, err := u.d.Video.Start(ctx, inv)
	if err != nil {
		return res, err
	}
	defer stream.Close()

	events, err := stream.Events()
	if err != nil {
		return res, &types.StreamError{Err: err}
	}
	res.Outcome = verdict.Aggregate(events)

	exit, err := stream.Wait()
	res.Exit = exit
	if err != nil {
		return res, err
	}

	if u.opts.StrictExit && res.Outcome.OK() && !exit.Success() {
		res.Outcome.Messages = append(res.Outcome.Messages, fmt.Sprintf("ffmpeg exited with status %d", exit.Code))
	}
	return res, verdict.Err(res.Outcome)
}
