package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/helousound/site/internal/logger"
	"github.com/helousound/site/internal/metrics"
)

const rejectedMessage = "Too many quote requests. Please try again later."

// Store counts hits per key within a window.
type Store interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Policy caps the number of requests a single client may make per window.
type Policy struct {
	Name   string
	Window time.Duration
	Limit  int
	// TrustProxy reads the client address from proxy headers. Enable it only
	// when the service sits behind a proxy that sets them.
	TrustProxy bool
}

func (p Policy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

func (p Policy) key(ip string) string {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		name = "default"
	}
	return fmt.Sprintf("%s:%s:%s", keyPrefix, name, ip)
}

// Middleware rejects clients that exceed the policy with 429. Store errors
// are logged and the request is let through.
func Middleware(policy Policy, store Store, logg *logger.Logger, m *metrics.QuoteMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := ClientIP(r, policy.TrustProxy)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			count, err := store.IncrWithTTL(ctx, policy.key(ip), policy.Window)
			if err != nil {
				if logg != nil {
					logg.Error(logg.WithField(ctx, "policy", policy.Name), "rate_limit.store_failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(policy.Limit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"policy":         policy.Name,
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				m.IncRateLimited()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.Window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": rejectedMessage})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the address the request came from. Without trustProxy
// the forwarding headers are ignored since any client can set them. With it,
// the right-most X-Forwarded-For hop is used, which is the one our proxy
// appended.
func ClientIP(r *http.Request, trustProxy bool) string {
	if r == nil {
		return ""
	}
	if trustProxy {
		if header := r.Header.Get("X-Forwarded-For"); header != "" {
			parts := strings.Split(header, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				if ip := strings.TrimSpace(parts[i]); ip != "" {
					return ip
				}
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
