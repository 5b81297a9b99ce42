package auth

import (
	"net"
	"net/http"
	"strings"
)

// Fingerprint is the (IP, User-Agent) pair observed on an incoming request.
// It is derived per request and never persisted.
type Fingerprint struct {
	IPAddress string
	UserAgent string
}

// ExtractIP returns the client IP for a request.
//
// The leftmost X-Forwarded-For entry wins over the peer address. That entry is
// client controlled unless the proxies in front of us rewrite the header.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (unix sockets, tests)
		return r.RemoteAddr
	}
	return host
}

// ExtractUserAgent returns the raw User-Agent header, or "" when absent.
func ExtractUserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

// FingerprintFromRequest snapshots the client identity of r.
func FingerprintFromRequest(r *http.Request) Fingerprint {
	return Fingerprint{
		IPAddress: ExtractIP(r),
		UserAgent: ExtractUserAgent(r),
	}
}
