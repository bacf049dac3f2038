package router

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/shandysiswandi/otplogin/internal/pkg/config"
)

type trustedProxies []netip.Prefix

// newTrustedProxies reads app.server.trusted_proxies, a comma separated list
// of CIDRs or single addresses. Invalid entries are skipped.
func newTrustedProxies(cfg config.Config) trustedProxies {
	if cfg == nil {
		return nil
	}

	return parseTrustedProxies(cfg.GetArray("app.server.trusted_proxies"))
}

func parseTrustedProxies(entries []string) trustedProxies {
	out := make(trustedProxies, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				slog.Warn("ignoring invalid trusted proxy", "entry", e, "error", err)
				continue
			}
			out = append(out, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(e)
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy", "entry", e, "error", err)
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return out
}

func (tp trustedProxies) contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range tp {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// middlewareIP rewrites RemoteAddr to the client IP. Forwarding headers are
// only honored when the socket peer is a trusted proxy.
func middlewareIP(trusted trustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rip := realIP(r, trusted); rip != "" {
				r.RemoteAddr = rip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func realIP(r *http.Request, trusted trustedProxies) string {
	peer, ok := parseAddr(hostOf(r.RemoteAddr))
	if !ok {
		return ""
	}
	if !trusted.contains(peer) {
		return peer.String()
	}

	for _, h := range []string{"True-Client-IP", "X-Real-IP"} {
		if addr, ok := parseAddr(r.Header.Get(h)); ok {
			return addr.String()
		}
	}

	// Walk X-Forwarded-For right to left; the first hop not added by a
	// trusted proxy is the client.
	client := peer
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, ok := parseAddr(hops[i])
			if !ok {
				break
			}
			client = addr
			if !trusted.contains(addr) {
				break
			}
		}
	}

	return client.String()
}

func parseAddr(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func hostOf(remote string) string {
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}

func clientIP(r *http.Request) string {
	return hostOf(r.RemoteAddr)
}
