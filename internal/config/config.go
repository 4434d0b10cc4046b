// Package config loads framegrab settings. Precedence, lowest first:
// built-in defaults, the TOML file, FRAMEGRAB_* environment variables, then
// whatever the CLI sets from flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/framegrab/internal/ports/adapters/download"
	"github.com/forPelevin/framegrab/internal/toolpath"
)

const DefaultFileName = "framegrab.toml"

type Config struct {
	FFmpegPath   string   `toml:"ffmpeg_path"`
	InstallDir   string   `toml:"install_dir"`
	DownloadURL  string   `toml:"download_url"`
	AllowedHosts []string `toml:"allowed_hosts"`
	LogLevel     string   `toml:"log_level"`
	LogFormat    string   `toml:"log_format"`
	StrictExit   bool     `toml:"strict_exit"`
}

func Default() Config {
	return Config{
		InstallDir: toolpath.DefaultInstallDir(),
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load reads path over the defaults. An empty path tries ./framegrab.toml and
// silently skips it when absent; an explicit path must exist. The returned
// config has the environment applied but is not yet validated.
func Load(path string, getenv func(string) string) (Config, string, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return Config{}, "", err
	}
	if exists {
		b, err := os.ReadFile(resolved)
		if err != nil {
			return Config{}, "", fmt.Errorf("open config: %w", err)
		}
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, "", fmt.Errorf("parse config: %w", err)
		}
	} else {
		resolved = ""
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.applyEnv(getenv)
	cfg.normalize()
	return cfg, resolved, nil
}

func resolvePath(path string) (string, bool, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return path, true, nil
	}
	abs, err := filepath.Abs(DefaultFileName)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return abs, false, nil
	case err != nil:
		return "", false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return abs, false, nil
	}
	return abs, true, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("FRAMEGRAB_FFMPEG"); v != "" {
		c.FFmpegPath = v
	}
	if v := getenv("FRAMEGRAB_INSTALL_DIR"); v != "" {
		c.InstallDir = v
	}
	if v := getenv("FRAMEGRAB_DOWNLOAD_URL"); v != "" {
		c.DownloadURL = v
	}
	if v := getenv("FRAMEGRAB_ALLOWED_HOSTS"); v != "" {
		c.AllowedHosts = strings.Split(v, ",")
	}
	if v := getenv("FRAMEGRAB_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("FRAMEGRAB_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("FRAMEGRAB_STRICT_EXIT"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			c.StrictExit = true
		case "0", "false", "no", "off":
			c.StrictExit = false
		}
	}
}

func (c *Config) normalize() {
	c.FFmpegPath = strings.TrimSpace(c.FFmpegPath)
	c.InstallDir = strings.TrimSpace(c.InstallDir)
	c.DownloadURL = strings.TrimSpace(c.DownloadURL)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	hosts := c.AllowedHosts[:0:0]
	for _, h := range c.AllowedHosts {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.AllowedHosts = hosts
}

func (c Config) Validate() error {
	if c.InstallDir == "" {
		return errors.New("install_dir is empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unsupported value %q", c.LogFormat)
	}
	if c.DownloadURL != "" {
		if err := download.ValidateURL(c.DownloadURL, c.AllowedHosts); err != nil {
			return fmt.Errorf("download_url: %w", err)
		}
	}
	return nil
}
