package analytics

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Unknown stands in for a domain or IP that no header resolves.
const Unknown = "unknown"

// Client is who an event came from.
type Client struct {
	Domain    string
	IP        string
	UserAgent string
}

func ClientFromRequest(r *http.Request) Client {
	return Client{
		Domain:    RequestDomain(r),
		IP:        RequestIP(r),
		UserAgent: r.UserAgent(),
	}
}

// RequestDomain returns the host of the Origin header, else of the Referer
// header. The first header present decides; a header without a host yields
// Unknown rather than falling through.
func RequestDomain(r *http.Request) string {
	for _, h := range []string{"Origin", "Referer"} {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		u, err := url.Parse(v)
		if err != nil || u.Host == "" {
			return Unknown
		}
		return u.Host
	}
	return Unknown
}

// RequestIP returns the first X-Forwarded-For entry, else X-Real-IP, else the
// socket peer address.
func RequestIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		return xr
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return Unknown
}
