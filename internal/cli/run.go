package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/framegrab/internal/config"
	"github.com/forPelevin/framegrab/internal/pipeline"
	"github.com/forPelevin/framegrab/internal/types"
)

func runFrame(cmd *cobra.Command, source, dest string) error {
	at, _ := cmd.Flags().GetString("time")
	cropFlag, _ := cmd.Flags().GetString("crop")

	rect, err := parseCrop(cropFlag)
	if err != nil {
		return err
	}
	if strings.TrimSpace(at) == "" {
		return errors.New("--time is empty")
	}
	req := types.FrameRequest{
		Source: absPath(source),
		Dest:   absPath(dest),
		Time:   at,
		Crop:   rect,
	}

	return withPipeline(cmd, func(ctx context.Context, cfg pipeline.Config) error {
		rep, err := pipeline.ExtractFrame(ctx, cfg, req)
		if err != nil {
			return err
		}
		return printReport(cmd, rep)
	})
}

func runClip(cmd *cobra.Command, source, dest string) error {
	start, _ := cmd.Flags().GetString("start")
	duration, _ := cmd.Flags().GetString("duration")
	keepAudio, _ := cmd.Flags().GetBool("keep-audio")
	cropFlag, _ := cmd.Flags().GetString("crop")

	rect, err := parseCrop(cropFlag)
	if err != nil {
		return err
	}
	if strings.TrimSpace(start) == "" {
		return errors.New("--start is empty")
	}
	if strings.TrimSpace(duration) == "" {
		return errors.New("--duration is empty")
	}
	req := types.ClipRequest{
		Source:    absPath(source),
		Dest:      absPath(dest),
		Start:     start,
		Duration:  duration,
		KeepAudio: keepAudio,
		Crop:      rect,
	}

	return withPipeline(cmd, func(ctx context.Context, cfg pipeline.Config) error {
		rep, err := pipeline.ExtractClip(ctx, cfg, req)
		if err != nil {
			return err
		}
		return printReport(cmd, rep)
	})
}

func runStatus(cmd *cobra.Command) error {
	return withPipeline(cmd, func(ctx context.Context, cfg pipeline.Config) error {
		rep := pipeline.Status(ctx, cfg)
		_, err := fmt.Fprintln(cmd.OutOrStdout(), pipeline.RenderStatus(rep))
		return err
	})
}

func runInstall(cmd *cobra.Command) error {
	force, _ := cmd.Flags().GetBool("force")
	return withPipeline(cmd, func(ctx context.Context, cfg pipeline.Config) error {
		path, err := pipeline.Install(ctx, cfg, force)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	})
}

func printReport(cmd *cobra.Command, rep pipeline.Report) error {
	out := rep.Dest
	if rep.DryRun {
		out = rep.Command
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// withPipeline loads config, applies flag overrides, builds the logger and
// the operation context, then calls fn.
func withPipeline(cmd *cobra.Command, fn func(context.Context, pipeline.Config) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := pipeline.NewLogger(cmd.ErrOrStderr(), pipeline.LogOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Color:  isTerminal(cmd.ErrOrStderr()),
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if cfg.Source != "" {
		logger.Debug("config loaded", zap.String("path", cfg.Source))
	}
	return fn(ctx, pipeline.Config{Config: cfg.Config, DryRun: dryRun, Logger: logger})
}

type loadedConfig struct {
	config.Config
	Source string
}

func loadConfig(cmd *cobra.Command) (loadedConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, resolved, err := config.Load(path, os.Getenv)
	if err != nil {
		return loadedConfig{}, fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("ffmpeg") {
		cfg.FFmpegPath, _ = flags.GetString("ffmpeg")
	}
	if flags.Changed("install-dir") {
		cfg.InstallDir, _ = flags.GetString("install-dir")
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if flags.Changed("log-format") {
		v, _ := flags.GetString("log-format")
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(v))
	}
	if flags.Changed("strict-exit") {
		cfg.StrictExit, _ = flags.GetBool("strict-exit")
	}
	return loadedConfig{Config: cfg, Source: resolved}, nil
}

const cropEpsilon = 1e-9

// parseCrop reads "x,y,w,h". Values stay as typed so ffmpeg sees the exact
// decimal strings; an empty flag means the full frame.
func parseCrop(s string) (types.CropRect, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.FullFrame(), nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return types.CropRect{}, fmt.Errorf("--crop: want x,y,w,h, got %q", s)
	}
	names := [4]string{"x", "y", "w", "h"}
	var vals [4]float64
	for i, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return types.CropRect{}, fmt.Errorf("--crop: %s=%q is not a number", names[i], p)
		}
		if v < 0 || v > 1 {
			return types.CropRect{}, fmt.Errorf("--crop: %s=%s is outside [0,1]", names[i], p)
		}
		parts[i] = p
		vals[i] = v
	}
	if vals[2] == 0 || vals[3] == 0 {
		return types.CropRect{}, errors.New("--crop: w and h must be > 0")
	}
	if vals[0]+vals[2] > 1+cropEpsilon || vals[1]+vals[3] > 1+cropEpsilon {
		return types.CropRect{}, errors.New("--crop: rectangle exceeds the frame")
	}
	return types.CropRect{X: parts[0], Y: parts[1], W: parts[2], H: parts[3]}, nil
}

func absPath(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
