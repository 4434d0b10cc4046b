package download

import (
	"fmt"
	"net/url"
	"strings"
)

// Static ffmpeg builds per platform.
var platformURLs = map[string]string{
	"linux/amd64":   "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-amd64-static.tar.xz",
	"linux/arm64":   "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-arm64-static.tar.xz",
	"windows/amd64": "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip",
	"darwin/amd64":  "https://evermeet.cx/ffmpeg/getrelease/zip",
	"darwin/arm64":  "https://www.osxexperts.net/ffmpeg7arm.zip",
}

var defaultAllowedHosts = map[string]struct{}{
	"johnvansickle.com":  {},
	"www.gyan.dev":       {},
	"evermeet.cx":        {},
	"www.osxexperts.net": {},
}

// PlatformURL returns the archive URL for goos/goarch.
func PlatformURL(goos, goarch string) (string, error) {
	u, ok := platformURLs[goos+"/"+goarch]
	if !ok {
		return "", fmt.Errorf("no ffmpeg build known for %s/%s; set download_url", goos, goarch)
	}
	return u, nil
}

// ValidateURL checks a download URL: absolute https, no userinfo, query or
// fragment, and a host from allowedHosts (or the built-in list when empty).
func ValidateURL(raw string, allowedHosts []string) error {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid download URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid download URL %q: absolute URL with host is required", raw)
	}
	if u.User != nil {
		return fmt.Errorf("invalid download URL %q: userinfo is not allowed", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid download URL %q: query and fragment are not allowed", raw)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("invalid download URL %q: https is required", raw)
	}
	return checkHost(u, allowedHosts)
}

func checkHost(u *url.URL, allowedHosts []string) error {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("invalid download URL %q: host is required", u.String())
	}
	if _, ok := normalizeAllowedHosts(allowedHosts)[host]; !ok {
		return fmt.Errorf("invalid download URL %q: host %q is not in allowed_hosts", u.String(), host)
	}
	return nil
}

func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	if len(allowedHosts) == 0 {
		return defaultAllowedHosts
	}

	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if v == "" {
			continue
		}
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		out[v] = struct{}{}
	}
	if len(out) == 0 {
		return defaultAllowedHosts
	}
	return out
}
