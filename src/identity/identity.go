// Package identity derives the caller identifiers admission decisions are keyed by.
package identity

import (
	"net"
	"net/http"
	"strings"
)

const (
	UserIdHeader       = "X-USER-ID"
	ForwardedForHeader = "X-Forwarded-For"
)

// UserID returns the trusted user id set by the upstream identity layer.
// A missing, blank or conflicting repeated header resolves to "".
func UserID(header http.Header) string {
	values := header.Values(UserIdHeader)
	if len(values) == 0 {
		return ""
	}

	userId := strings.TrimSpace(values[0])
	for _, v := range values[1:] {
		if strings.TrimSpace(v) != userId {
			return ""
		}
	}
	return userId
}

// ClientIP returns the original client address: the first X-Forwarded-For
// entry when present, otherwise the transport peer. "" when neither is known.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get(ForwardedForHeader); strings.TrimSpace(xff) != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
