// Package ssrf guards user-supplied URLs against Server-Side Request
// Forgery. It provides pure IP/hostname classifiers, a stateless URL safety
// gate, and a DNS-backed public-host assertion that together must be run
// before — and at every redirect hop of — any fetch of untrusted input.
package ssrf

import "strings"

// ipv4Range describes a blocked private or link-local IPv4 range by its
// leading octets. Exactly one of the following shapes is used:
//
//	{a: 10}                    — 10.0.0.0/8
//	{a: 169, b: 254, hasB: true} — 169.254.0.0/16
//	{a: 172, bLo: 16, bHi: 31} — 172.16.0.0/12 (second octet 16–31)
type ipv4Range struct {
	a        int
	b        int
	hasB     bool
	bLo, bHi int
	hasMask  bool
}

// privateIPv4Ranges is the immutable set of blocked IPv4 ranges:
// 10/8, 127/8, 169.254/16 (link-local, cloud metadata), 172.16/12,
// 192.168/16.
var privateIPv4Ranges = []ipv4Range{
	{a: 10},
	{a: 127},
	{a: 169, b: 254, hasB: true},
	{a: 172, bLo: 16, bHi: 31, hasMask: true},
	{a: 192, b: 168, hasB: true},
}

// blockedHostnames are exact lower-case hostnames that are always rejected.
var blockedHostnames = []string{"localhost"}

// blockedHostnameSuffix blocks subdomains of blocked names
// (e.g. "foo.localhost").
const blockedHostnameSuffix = ".localhost"

// parseIPv4 parses a strict dotted-quad address into its four octets.
// Returns false for anything that is not exactly four decimal components in
// [0,255] — including five-component strings, empty components, non-numeric
// text, and out-of-range numbers. Deliberately stricter than net.ParseIP,
// which would normalize forms the classifier must reject.
func parseIPv4(addr string) ([4]int, bool) {
	var octets [4]int
	parts := strings.Split(addr, ".")
	if len(parts) != 4 {
		return octets, false
	}
	for i, part := range parts {
		if part == "" || len(part) > 3 {
			return octets, false
		}
		n := 0
		for _, c := range part {
			if c < '0' || c > '9' {
				return octets, false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return octets, false
		}
		octets[i] = n
	}
	return octets, true
}

func matchRange(octets [4]int, r ipv4Range) bool {
	if octets[0] != r.a {
		return false
	}
	if r.hasB {
		return octets[1] == r.b
	}
	if r.hasMask {
		return octets[1] >= r.bLo && octets[1] <= r.bHi
	}
	return true
}

// IsPrivateOrLinkLocalIPv4 reports whether addr is a dotted-quad address in
// a private or link-local range (10/8, 127/8, 169.254/16, 172.16/12,
// 192.168/16). Malformed strings always return false. Pure and total; never
// touches the network.
func IsPrivateOrLinkLocalIPv4(addr string) bool {
	octets, ok := parseIPv4(addr)
	if !ok {
		return false
	}
	for _, r := range privateIPv4Ranges {
		if matchRange(octets, r) {
			return true
		}
	}
	return false
}

// IsBlockedIPv6 reports whether addr is an IPv6 address in a blocked range:
// loopback (::1), link-local (fe80::/10), or unique-local (fc00::/7,
// fd00::/8). Matching is case-insensitive on the textual prefix.
func IsBlockedIPv6(addr string) bool {
	norm := strings.ToLower(addr)
	if norm == "::1" {
		return true
	}
	if strings.HasPrefix(norm, "fe80:") {
		return true
	}
	if strings.HasPrefix(norm, "fc") || strings.HasPrefix(norm, "fd") {
		return true
	}
	return false
}

// IsBlockedHostname reports whether the lower-cased hostname exactly equals
// a blocked name or carries a blocked suffix.
func IsBlockedHostname(name string) bool {
	lower := strings.ToLower(name)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return strings.HasSuffix(lower, blockedHostnameSuffix)
}
