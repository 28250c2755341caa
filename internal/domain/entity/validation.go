package entity

import (
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURL checks that raw is safe to fetch and returns it unchanged.
// Checks run in a fixed order and the first failure wins:
//
//  1. empty input                        -> KindMissingURL
//  2. not an absolute URL                -> KindMalformedURL
//  3. scheme other than http/https       -> KindUnsupportedScheme
//  4. no hostname                        -> KindMissingHost
//  5. private/loopback/link-local IP     -> KindPrivateAddress
//     (zoned IPv6 and legacy IPv4 forms such as 0177.0.0.1 or 2130706433
//     are classified by the address they denote)
//  6. "localhost" or a "127." prefix     -> KindLoopbackHost
//
// Domain names are not resolved. A name that resolves to a private address
// at fetch time (DNS rebinding) is not caught here.
func ValidateURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", NewFailure(KindMissingURL, "url", "URL is required and must be a string")
	}

	if len(raw) > maxURLLength {
		return "", NewFailure(KindMalformedURL, "url", "Invalid URL format")
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		f := NewFailure(KindMalformedURL, "url", "Invalid URL format")
		f.Err = err
		return "", f
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", NewFailure(KindUnsupportedScheme, "url", "URL must use HTTP or HTTPS protocol")
	}

	host := u.Hostname()
	if host == "" {
		return "", NewFailure(KindMissingHost, "url", "URL must have a valid hostname")
	}

	if addr, ok := parseHostAddr(host); ok && isPrivateIP(addr) {
		return "", NewFailure(KindPrivateAddress, "url", "Private/loopback IP addresses are not allowed")
	}

	if isLoopbackName(host) {
		return "", NewFailure(KindLoopbackHost, "url", "Localhost addresses are not allowed")
	}

	return raw, nil
}

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598). It is not
// publicly routable.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// parseHostAddr returns the address an IP literal host denotes. IPv6 zones
// are dropped and IPv4-mapped IPv6 addresses are unmapped. Besides the
// canonical dotted quad, IPv4 is accepted in the inet_aton forms resolvers
// still honour: fewer than four parts, and octal or hex parts.
func parseHostAddr(host string) (netip.Addr, bool) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.WithZone("").Unmap(), true
	}
	return parseLegacyIPv4(strings.TrimSuffix(host, "."))
}

// parseLegacyIPv4 parses s with inet_aton rules: "a.b.c.d", "a.b.c" (c is
// 16 bits), "a.b" (b is 24 bits) or "a" (32 bits), each part decimal,
// 0-prefixed octal or 0x-prefixed hex.
func parseLegacyIPv4(s string) (netip.Addr, bool) {
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return netip.Addr{}, false
	}

	values := make([]uint64, len(parts))
	for i, part := range parts {
		v, ok := parseInetPart(part)
		if !ok {
			return netip.Addr{}, false
		}
		values[i] = v
	}

	var ip uint64
	for i, v := range values[:len(values)-1] {
		if v > 0xff {
			return netip.Addr{}, false
		}
		ip |= v << (24 - 8*uint(i))
	}
	last := values[len(values)-1]
	if last >= 1<<(8*uint(5-len(values))) {
		return netip.Addr{}, false
	}
	ip |= last

	return netip.AddrFrom4([4]byte{byte(ip >> 24), byte(ip >> 16), byte(ip >> 8), byte(ip)}), true
}

func parseInetPart(part string) (uint64, bool) {
	if part == "" {
		return 0, false
	}
	base, digits := 10, part
	switch {
	case len(part) > 2 && (part[:2] == "0x" || part[:2] == "0X"):
		base, digits = 16, part[2:]
	case len(part) > 1 && part[0] == '0':
		base, digits = 8, part[1:]
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isPrivateIP checks if an address is in a private or restricted range:
//   - loopback (127.0.0.0/8, ::1)
//   - private networks (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, fc00::/7)
//   - shared address space (100.64.0.0/10)
//   - link-local (169.254.0.0/16, fe80::/10), which covers cloud metadata endpoints
//   - unspecified (0.0.0.0, ::) and multicast
func isPrivateIP(addr netip.Addr) bool {
	addr = addr.WithZone("").Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		sharedAddressSpace.Contains(addr)
}

func isLoopbackName(host string) bool {
	h := strings.ToLower(strings.TrimSuffix(host, "."))
	return h == "localhost" || strings.HasSuffix(h, ".localhost") || strings.HasPrefix(h, "127.")
}
