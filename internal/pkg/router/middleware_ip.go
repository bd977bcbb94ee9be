package router

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"github.com/shandysiswandi/gocrypt/internal/pkg/config"
)

// trustedProxies lists the peers allowed to report the client address through
// X-Forwarded-For or X-Real-IP. Headers from any other peer are ignored.
type trustedProxies []netip.Prefix

func parseTrustedProxies(cfg config.Config) trustedProxies {
	if cfg == nil {
		return nil
	}

	var out trustedProxies
	for _, raw := range cfg.GetArray("app.server.trusted_proxies") {
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(raw); err == nil {
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("ignoring invalid trusted proxy", "value", raw)
	}
	return out
}

func (t trustedProxies) contains(a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range t {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// clientAddr returns the address of the client that sent r. Forwarding
// headers are walked right to left and the first hop that is not a trusted
// proxy wins.
func (t trustedProxies) clientAddr(r *http.Request) (netip.Addr, bool) {
	peer, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		a, err := netip.ParseAddr(r.RemoteAddr)
		if err != nil {
			return netip.Addr{}, false
		}
		peer = netip.AddrPortFrom(a, 0)
	}

	addr := peer.Addr().Unmap()
	if !t.contains(addr) {
		return addr, true
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		addr = hop.Unmap()
		if !t.contains(addr) {
			return addr, true
		}
	}

	if xrip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xrip.Unmap(), true
	}

	return addr, true
}

func middlewareIP(cfg config.Config) Middleware {
	trusted := parseTrustedProxies(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if addr, ok := trusted.clientAddr(r); ok {
				r.RemoteAddr = addr.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}
