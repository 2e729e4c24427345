package ssrf

import (
	"context"
	"net"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"news-thread/internal/apperror"
)

// Resolver abstracts DNS lookups so tests can substitute fixed answers.
// Production code uses net.DefaultResolver.
type Resolver interface {
	// LookupIP resolves host for the given network ("ip4" or "ip6").
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// AssertSafeURL parses raw and enforces the stateless URL policy: the URL
// must be absolute, http or https, and its hostname must not be blocked.
// No network activity is performed.
//
// This must be re-invoked on every redirect target before following it;
// a redirect to a disallowed URL fails exactly like an initial one.
func AssertSafeURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidURL, "Invalid URL.").WithCause(err)
	}
	// url.Parse accepts relative references; the pipeline only ever deals
	// in absolute URLs.
	if !u.IsAbs() {
		return nil, apperror.New(apperror.CodeInvalidURL, "Invalid URL.")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperror.New(apperror.CodeDisallowedURL, "Only http and https URLs are allowed.")
	}
	host := u.Hostname()
	if host == "" {
		return nil, apperror.New(apperror.CodeInvalidURL, "Invalid URL.")
	}
	if IsBlockedHostname(host) {
		return nil, apperror.New(apperror.CodeDisallowedURL, "This URL is not allowed.")
	}
	return u, nil
}

// Gate performs DNS-backed host checks. A zero-value Gate uses the system
// resolver.
type Gate struct {
	resolver Resolver
}

// NewGate creates a Gate with the given resolver. Passing nil selects
// net.DefaultResolver.
func NewGate(resolver Resolver) *Gate {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Gate{resolver: resolver}
}

// ResolveAndAssertPublicHost resolves hostname for both A and AAAA records
// and verifies that every resolved address is publicly routable.
//
// Both families are queried concurrently; a lookup error in one family is
// tolerated as long as the other yields addresses. Zero addresses across
// both families is DNS_BLOCKED. Any private or link-local result is
// PRIVATE_IP_BLOCKED — this is the defense against DNS rebinding, so it
// must run again at every redirect hop with that hop's hostname.
func (g *Gate) ResolveAndAssertPublicHost(ctx context.Context, hostname string) error {
	resolver := g.resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	var (
		mu  sync.Mutex
		ips []net.IP
	)
	eg, egCtx := errgroup.WithContext(ctx)
	for _, network := range []string{"ip4", "ip6"} {
		eg.Go(func() error {
			addrs, err := resolver.LookupIP(egCtx, network, hostname)
			if err != nil {
				// Single-family failures are expected (many hosts
				// have no AAAA records); the zero-address check
				// below catches total failure.
				return nil
			}
			mu.Lock()
			ips = append(ips, addrs...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(ips) == 0 {
		return apperror.New(apperror.CodeDNSBlocked, "DNS resolution failed.")
	}

	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			if IsPrivateOrLinkLocalIPv4(v4.String()) {
				return apperror.New(apperror.CodePrivateIPBlocked, "This URL points to a private or blocked address.")
			}
			continue
		}
		if IsBlockedIPv6(ip.String()) {
			return apperror.New(apperror.CodePrivateIPBlocked, "This URL points to a private or blocked address.")
		}
	}
	return nil
}
