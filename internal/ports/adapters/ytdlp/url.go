package ytdlp

import (
	"fmt"
	"net/url"
	"strings"
)

var defaultAllowedHosts = map[string]struct{}{
	"youtube.com":      {},
	"youtu.be":         {},
	"vimeo.com":        {},
	"drive.google.com": {},
}

// ValidateURL accepts absolute https links without credentials whose host is
// an allowed host or one of its subdomains.
func ValidateURL(raw string, allowedHosts []string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty video link")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid video link: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid video link %q: absolute URL with host is required", raw)
	}
	if u.User != nil {
		return fmt.Errorf("invalid video link %q: userinfo is not allowed", raw)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("invalid video link %q: https is required", raw)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("invalid video link %q: host is required", raw)
	}
	if !hostAllowed(host, normalizeAllowedHosts(allowedHosts)) {
		return fmt.Errorf("invalid video link %q: host %q is not in downloads.allowed_hosts", raw, host)
	}
	return nil
}

func hostAllowed(host string, allowed map[string]struct{}) bool {
	for h := host; h != ""; {
		if _, ok := allowed[h]; ok {
			return true
		}
		i := strings.IndexByte(h, '.')
		if i < 0 {
			break
		}
		h = h[i+1:]
	}
	return false
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
