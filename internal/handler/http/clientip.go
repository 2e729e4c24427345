package http

import (
	"net/http"
	"strings"
)

// unknownClient is the abuse-control key used when no proxy header
// identifies the caller. All header-less callers share one bucket.
const unknownClient = "unknown"

// ClientIP derives the client IP for abuse control from proxy headers.
// The first X-Forwarded-For entry wins, then X-Real-IP. RemoteAddr is
// deliberately not used: the service always sits behind a proxy, and
// falling back to the proxy's own address would pool every caller into
// the proxy's rate-limit bucket.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return unknownClient
}
