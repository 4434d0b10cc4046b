package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forPelevin/framegrab/internal/config"
	"github.com/forPelevin/framegrab/internal/domain/invocation"
	"github.com/forPelevin/framegrab/internal/ports"
	"github.com/forPelevin/framegrab/internal/ports/adapters/download"
	"github.com/forPelevin/framegrab/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/framegrab/internal/toolpath"
	"github.com/forPelevin/framegrab/internal/types"
	"github.com/forPelevin/framegrab/internal/usecase"
)

const lockFileName = ".install.lock"

type Config struct {
	config.Config

	// DryRun resolves the binary and builds the command line without
	// spawning anything.
	DryRun bool
	Logger *zap.Logger
}

func (c Config) Validate() error {
	return c.Config.Validate()
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Report describes one frame or clip job.
type Report struct {
	JobID   string
	Binary  toolpath.Status
	Command string
	Dest    string
	DryRun  bool
	Outcome types.Outcome
	Exit    types.ExitStatus
}

func ExtractFrame(ctx context.Context, cfg Config, req types.FrameRequest) (Report, error) {
	return runJob(ctx, cfg, "frame", req.Dest,
		func() (invocation.Invocation, error) { return invocation.BuildFrame(req) },
		func(uc usecase.Usecase) (usecase.Result, error) { return uc.ExtractFrame(ctx, req) },
	)
}

func ExtractClip(ctx context.Context, cfg Config, req types.ClipRequest) (Report, error) {
	return runJob(ctx, cfg, "clip", req.Dest,
		func() (invocation.Invocation, error) { return invocation.BuildClip(req) },
		func(uc usecase.Usecase) (usecase.Result, error) { return uc.ExtractClip(ctx, req) },
	)
}

func runJob(
	ctx context.Context,
	cfg Config,
	op, dest string,
	plan func() (invocation.Invocation, error),
	execute func(usecase.Usecase) (usecase.Result, error),
) (Report, error) {
	tool := toolpath.Resolve(cfg.FFmpegPath, cfg.InstallDir)
	rep := Report{
		JobID:  uuid.NewString(),
		Binary: tool,
		Dest:   dest,
		DryRun: cfg.DryRun,
	}
	log := cfg.logger().With(
		zap.String("job_id", rep.JobID),
		zap.String("op", op),
		zap.String("ffmpeg", tool.Command),
		zap.String("ffmpeg_source", string(tool.Source)),
	)

	if cfg.DryRun {
		inv, err := plan()
		if err != nil {
			log.Error("plan failed", zap.Error(err))
			return rep, err
		}
		rep.Command = commandLine(tool.Command, inv.Args())
		log.Info("dry run", zap.String("command", rep.Command))
		return rep, nil
	}

	if !tool.Available {
		log.Warn("ffmpeg not found; run 'framegrab ffmpeg install' or set ffmpeg_path", zap.String("detail", tool.Detail))
	}

	uc := usecase.New(usecase.Deps{Video: ffmpeg.New(tool.Command)}, usecase.Options{StrictExit: cfg.StrictExit})

	started := time.Now()
	log.Info("starting", zap.String("dest", dest))
	res, err := execute(uc)
	rep.Outcome = res.Outcome
	rep.Exit = res.Exit
	if len(res.Args) > 0 {
		rep.Command = commandLine(tool.Command, res.Args)
		log.Debug("command", zap.String("command", rep.Command))
	}
	elapsed := zap.Duration("elapsed", time.Since(started))
	if err != nil {
		log.Error("failed", zap.Error(err), zap.Int("exit_code", res.Exit.Code), elapsed)
		return rep, err
	}
	log.Info("done", zap.String("dest", dest), zap.Int("exit_code", res.Exit.Code), elapsed)
	return rep, nil
}

func commandLine(bin string, args []string) string {
	full := make([]string, 0, 1+len(ffmpeg.Preamble)+len(args))
	full = append(full, bin)
	full = append(full, ffmpeg.Preamble...)
	full = append(full, args...)
	return invocation.Join(full...)
}

// ToolReport is what "ffmpeg status" prints.
type ToolReport struct {
	Binary      toolpath.Status
	Runnable    bool
	InstallDir  string
	DownloadURL string
}

func Status(ctx context.Context, cfg Config) ToolReport {
	tool := toolpath.Resolve(cfg.FFmpegPath, cfg.InstallDir)
	uc := usecase.New(usecase.Deps{Probe: ffmpeg.New(tool.Command)}, usecase.Options{})

	rep := ToolReport{
		Binary:     tool,
		Runnable:   uc.CheckTool(ctx),
		InstallDir: cfg.InstallDir,
	}
	if u, err := newProvisioner(cfg).URL(); err == nil {
		rep.DownloadURL = u
	}
	cfg.logger().Debug("tool status",
		zap.String("ffmpeg", tool.Command),
		zap.String("source", string(tool.Source)),
		zap.Bool("runnable", rep.Runnable),
	)
	return rep
}

// Install downloads ffmpeg into the install dir. Concurrent installs are
// serialized by a lock file next to the binary. When the binary is already
// there and runnable, Install does nothing unless force is set.
func Install(ctx context.Context, cfg Config, force bool) (string, error) {
	log := cfg.logger().With(zap.String("job_id", uuid.NewString()), zap.String("op", "install"))
	target := toolpath.InstalledPath(cfg.InstallDir)

	if err := os.MkdirAll(cfg.InstallDir, 0o755); err != nil {
		return "", &types.InstallError{Stage: "prepare", Err: err}
	}
	lock := flock.New(filepath.Join(cfg.InstallDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return "", &types.InstallError{Stage: "lock", Err: err}
	}
	if !locked {
		log.Info("another install is running; waiting", zap.String("lock", lock.Path()))
		locked, err = lock.TryLockContext(ctx, 250*time.Millisecond)
		if err != nil {
			return "", &types.InstallError{Stage: "lock", Err: err}
		}
		if !locked {
			return "", &types.InstallError{Stage: "lock", Err: errors.New("install lock not acquired")}
		}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("release install lock", zap.Error(err))
		}
	}()

	deps := usecase.Deps{Probe: ffmpeg.New(target), Tool: newProvisioner(cfg)}
	uc := usecase.New(deps, usecase.Options{})

	if !force && fileExists(target) && uc.CheckTool(ctx) {
		log.Info("ffmpeg already installed", zap.String("path", target))
		return target, nil
	}

	started := time.Now()
	log.Info("installing ffmpeg", zap.String("dir", cfg.InstallDir))
	if err := uc.InstallTool(ctx); err != nil {
		log.Error("install failed", zap.Error(err))
		return "", err
	}
	if !uc.CheckTool(ctx) {
		err := &types.InstallError{Stage: "verify", Err: fmt.Errorf("%s does not start", target)}
		log.Error("install failed", zap.Error(err))
		return "", err
	}
	log.Info("ffmpeg installed", zap.String("path", target), zap.Duration("elapsed", time.Since(started)))
	return target, nil
}

func newProvisioner(cfg Config) *download.Provisioner {
	return download.New(cfg.InstallDir, cfg.DownloadURL, cfg.AllowedHosts)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// ensure adapters implement ports
var _ ports.Transcoder = (*ffmpeg.Adapter)(nil)
var _ ports.ToolProbe = (*ffmpeg.Adapter)(nil)
var _ ports.Provisioner = (*download.Provisioner)(nil)
