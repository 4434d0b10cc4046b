package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "framegrab",
		Short:        "Extract still frames and clips from local videos with ffmpeg",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SilenceErrors = true

	pf := root.PersistentFlags()
	pf.String("config", getenvDefault("FRAMEGRAB_CONFIG", ""), "Path to framegrab.toml")
	pf.String("ffmpeg", "", "ffmpeg binary to run (overrides config)")
	pf.String("install-dir", "", "Directory for the downloaded ffmpeg")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: console or json")
	pf.Bool("strict-exit", false, "Fail when ffmpeg exits non-zero even without an error line")
	pf.Bool("dry-run", false, "Print the ffmpeg command instead of running it")
	pf.Duration("timeout", 0, "Abort the operation after this long (0 disables)")

	root.AddCommand(newFrameCmd(), newClipCmd(), newFFmpegCmd())
	return root
}

func newFrameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame <source> <dest>",
		Short: "Write one frame at --time to an image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrame(cmd, args[0], args[1])
		},
	}
	cmd.Flags().String("time", "0", "Timestamp to grab (seconds or HH:MM:SS[.ms])")
	cmd.Flags().String("crop", "", "Normalized crop rectangle x,y,w,h in [0,1]")
	return cmd
}

func newClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip <source> <dest>",
		Short: "Write --duration of video starting at --start",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClip(cmd, args[0], args[1])
		},
	}
	cmd.Flags().String("start", "0", "Clip start (seconds or HH:MM:SS[.ms])")
	cmd.Flags().String("duration", "", "Clip length (seconds or HH:MM:SS[.ms])")
	cmd.Flags().Bool("keep-audio", false, "Keep the audio track")
	cmd.Flags().String("crop", "", "Normalized crop rectangle x,y,w,h in [0,1]")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newFFmpegCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ffmpeg",
		Short: "Inspect or install the ffmpeg binary",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show which ffmpeg would run and whether it starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}

	install := &cobra.Command{
		Use:   "install",
		Short: "Download a static ffmpeg build into the install dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd)
		},
	}
	install.Flags().Bool("force", false, "Download even when ffmpeg is already installed")

	cmd.AddCommand(status, install)
	return cmd
}
