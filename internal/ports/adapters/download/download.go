// Package download provisions a static ffmpeg build into a local directory.
//
// A Provisioner is not safe for concurrent EnsureInstalled calls against the
// same directory; callers serialize (the CLI holds a file lock).
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/forPelevin/framegrab/internal/toolpath"
	"github.com/forPelevin/framegrab/internal/types"
)

const downloadTimeout = 15 * time.Minute

type Provisioner struct {
	installDir   string
	url          string
	allowedHosts []string
	client       *http.Client
	goos         string
	goarch       string
}

// New returns a provisioner installing into installDir. An empty archiveURL
// picks the build for the running platform.
func New(installDir, archiveURL string, allowedHosts []string) *Provisioner {
	return &Provisioner{
		installDir:   installDir,
		url:          strings.TrimSpace(archiveURL),
		allowedHosts: append([]string(nil), allowedHosts...),
		client:       &http.Client{Timeout: downloadTimeout},
		goos:         runtime.GOOS,
		goarch:       runtime.GOARCH,
	}
}

// WithHTTPClient returns a copy using c for downloads.
func (p *Provisioner) WithHTTPClient(c *http.Client) *Provisioner {
	cp := *p
	cp.client = c
	return &cp
}

func (p *Provisioner) InstallDir() string { return p.installDir }

// URL returns the archive URL EnsureInstalled would fetch.
func (p *Provisioner) URL() (string, error) {
	if p.url != "" {
		return p.url, nil
	}
	return PlatformURL(p.goos, p.goarch)
}

// EnsureInstalled downloads the archive, extracts the ffmpeg binary and moves
// it into place. The final rename means a failed run never leaves a partial
// binary at the install path.
func (p *Provisioner) EnsureInstalled(ctx context.Context) error {
	src, err := p.URL()
	if err != nil {
		return &types.InstallError{Stage: "resolve", Err: err}
	}
	if err := ValidateURL(src, p.allowedHosts); err != nil {
		return &types.InstallError{Stage: "resolve", Err: err}
	}
	if p.installDir == "" {
		return &types.InstallError{Stage: "resolve", Err: errors.New("install dir is empty")}
	}
	if err := os.MkdirAll(p.installDir, 0o755); err != nil {
		return &types.InstallError{Stage: "prepare", Err: err}
	}

	archive, err := os.CreateTemp(p.installDir, ".ffmpeg-archive-*")
	if err != nil {
		return &types.InstallError{Stage: "prepare", Err: err}
	}
	archivePath := archive.Name()
	defer os.Remove(archivePath)

	err = p.fetch(ctx, src, archive)
	if cerr := archive.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &types.InstallError{Stage: "download", Err: err}
	}

	bin, err := os.CreateTemp(p.installDir, ".ffmpeg-bin-*")
	if err != nil {
		return &types.InstallError{Stage: "prepare", Err: err}
	}
	binPath := bin.Name()
	defer os.Remove(binPath)

	err = extractBinary(archivePath, toolpath.BinaryName(), bin)
	if cerr := bin.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &types.InstallError{Stage: "unpack", Err: err}
	}

	if err := os.Chmod(binPath, 0o755); err != nil {
		return &types.InstallError{Stage: "install", Err: err}
	}
	if err := os.Rename(binPath, toolpath.InstalledPath(p.installDir)); err != nil {
		return &types.InstallError{Stage: "install", Err: err}
	}
	return nil
}

func (p *Provisioner) fetch(ctx context.Context, src string, dst io.Writer) error {
	client := *p.client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return checkRedirect(req.URL, p.allowedHosts)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: status %d", src, resp.StatusCode)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("GET %s: %w", src, err)
	}
	return nil
}

// Mirrors redirect to CDN paths with query strings, so only scheme and host
// are checked here.
func checkRedirect(u *url.URL, allowedHosts []string) error {
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("redirect to %q: https is required", u.String())
	}
	return checkHost(u, allowedHosts)
}
