package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the peer address of the request in canonical form.
// Proxy headers are ignored; the API is served without a CDN in front.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	host = strings.TrimSpace(host)
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i]
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}

// RateLimitKey groups IPv6 clients by /64, the smallest block usually assigned to one subscriber.
// IPv4 addresses are returned unchanged.
func RateLimitKey(r *http.Request) string {
	ip := net.ParseIP(RealClientIP(r))
	if ip == nil || ip.To4() != nil {
		return RealClientIP(r)
	}
	return ip.Mask(net.CIDRMask(64, 128)).String() + "/64"
}
