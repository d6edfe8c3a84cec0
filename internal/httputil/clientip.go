package httputil

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client IP from the request. Forwarding headers
// (X-Forwarded-For, then X-Real-IP) are only honored when the direct peer is
// a loopback address, i.e. a local reverse proxy in front of the host.
// Properly handles IPv6 addresses including bracketed notation.
func GetClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !isLoopback(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the chain
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

// IsLoopbackRequest reports whether the direct peer of r is on this machine
func IsLoopbackRequest(r *http.Request) bool {
	return isLoopback(remoteHost(r.RemoteAddr))
}

func remoteHost(addr string) string {
	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return ip
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
