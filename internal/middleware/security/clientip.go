package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPResolver finds the client address of a request. Forwarding headers are
// only trusted when the direct peer is a listed proxy.
type IPResolver struct {
	trustedProxies []*net.IPNet
}

// NewIPResolver trusts loopback and the private ranges by default.
func NewIPResolver() *IPResolver {
	r := &IPResolver{}
	for _, cidr := range []string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		if err := r.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *IPResolver) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	r.trustedProxies = append(r.trustedProxies, network)
	return nil
}

// ClientIP returns the first valid X-Forwarded-For entry, then X-Real-IP,
// then the peer address.
func (r *IPResolver) ClientIP(req *http.Request) string {
	directIP, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		directIP = req.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !r.isTrusted(parsed) {
		return directIP
	}

	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(req.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (r *IPResolver) isTrusted(ip net.IP) bool {
	for _, network := range r.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
