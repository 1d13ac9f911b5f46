// CLAUDE:SUMMARY Validates URLs before the browser navigates to them: scheme allow-list, optional private-host blocking.
// Package safeurl guards page navigation. Test authoring routinely
// targets localhost dev servers, so private and loopback addresses are
// allowed by default; hosted deployments opt into blocking them.
package safeurl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("safeurl: only http and https schemes are allowed")

// ErrPrivateHost is returned when private-host blocking is on and the
// URL targets a private or loopback address.
var ErrPrivateHost = errors.New("safeurl: URL targets a private or loopback address")

// Options controls validation strictness.
type Options struct {
	// BlockPrivateHosts rejects URLs resolving to loopback, link-local,
	// or RFC 1918 / RFC 4193 addresses. Off by default: local dev
	// servers are the common navigation target.
	BlockPrivateHosts bool
}

// Validate checks that rawURL is http/https with a hostname, and, when
// blocking is on, that it does not resolve to a private address. DNS
// resolution is performed in that case to catch internal hostnames.
func Validate(rawURL string, opts Options) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("safeurl: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrUnsafeScheme
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("safeurl: URL has no host")
	}

	if !opts.BlockPrivateHosts {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return ErrPrivateHost
		}
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		// DNS failure: let the navigation surface the network error.
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && isPrivateIP(ip) {
			return ErrPrivateHost
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	for _, network := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"fc00::/7",
		"::1/128",
	} {
		_, cidr, err := net.ParseCIDR(network)
		if err != nil {
			continue
		}
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
