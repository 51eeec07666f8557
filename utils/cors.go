package utils

import (
	"net"
	"net/url"
	"strings"
)

var privateNetworks = []*net.IPNet{
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("169.254.0.0/16"),
	mustParseCIDR("::1/128"),
	mustParseCIDR("fe80::/10"),
	mustParseCIDR("fc00::/7"),
}

// OriginPolicy decides which browser origins may call the API. Local
// network origins are always trusted; anything else must be listed.
type OriginPolicy struct {
	extra map[string]struct{}
}

// NewOriginPolicy trusts the given origins in addition to local ones.
// Entries are compared as scheme://host[:port], case-insensitively.
func NewOriginPolicy(allowed []string) OriginPolicy {
	extra := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
		if origin != "" {
			extra[origin] = struct{}{}
		}
	}
	return OriginPolicy{extra: extra}
}

// Allowed reports whether an Origin header value should be trusted.
func (p OriginPolicy) Allowed(origin string) bool {
	if _, ok := p.extra[strings.ToLower(origin)]; ok {
		return true
	}
	return IsAllowedOrigin(origin)
}

// IsAllowedOrigin accepts localhost, private and link-local IPs, .local
// hostnames and single-label LAN hostnames. Public origins are rejected.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	switch {
	case hostname == "localhost":
		return true
	case strings.HasSuffix(hostname, ".local"):
		return true
	case !strings.Contains(hostname, ".") && !strings.Contains(hostname, ":"):
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		for _, network := range privateNetworks {
			if network.Contains(ip) {
				return true
			}
		}
	}
	return false
}

func mustParseCIDR(s string) *net.IPNet {
	_, network, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return network
}
