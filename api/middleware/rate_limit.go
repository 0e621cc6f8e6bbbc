package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sunkissed-southern/storefront/api/responses"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/logger"
)

// CounterStore increments a fixed-window counter.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RateLimitPolicy defines the throttling parameters for a route.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
	keyFn  func(parts ...string) string
}

// NewRateLimitPolicy builds a policy allowing limit hits per window, counted
// per client IP and per session. keyFn namespaces counter keys; nil joins
// the parts with colons.
func NewRateLimitPolicy(name string, window time.Duration, limit int, keyFn func(parts ...string) string) RateLimitPolicy {
	p := RateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
		keyFn:  keyFn,
	}
	if p.name == "" {
		p.name = "default"
	}
	return p
}

func (p RateLimitPolicy) counterKey(scope, value string) string {
	if p.keyFn != nil {
		return p.keyFn(p.name, scope, value)
	}
	return strings.Join([]string{"rl", p.name, scope, value}, ":")
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

// RateLimit rejects requests once the IP or the session exceeds the policy.
func RateLimit(policy RateLimitPolicy, store CounterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			scopes := map[string]string{"ip": clientIP(r)}
			if sess, ok := SessionFromContext(ctx); ok {
				scopes["session"] = sess.ID
			}

			for scope, value := range scopes {
				if value == "" {
					continue
				}
				count, err := store.IncrWithTTL(ctx, policy.counterKey(scope, value), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(policy.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":         policy.name,
							"scope":          scope,
							"attempts":       count,
							"limit":          policy.limit,
							"window_seconds": int(policy.window.Seconds()),
						}), "rate_limit.blocked")
					}
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts. Please wait a moment and try again."))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// MemoryCounter is the single-process CounterStore.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]counterWindow
	now     func() time.Time
}

type counterWindow struct {
	count   int64
	expires time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]counterWindow), now: time.Now}
}

func (m *MemoryCounter) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	w, ok := m.windows[key]
	if !ok || (!w.expires.IsZero() && !now.Before(w.expires)) {
		w = counterWindow{}
		if ttl > 0 {
			w.expires = now.Add(ttl)
		}
	}
	w.count++
	m.windows[key] = w
	return w.count, nil
}

// PurgeExpired drops windows that have closed.
func (m *MemoryCounter) PurgeExpired(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var removed int64
	for key, w := range m.windows {
		if !w.expires.IsZero() && !now.Before(w.expires) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed, nil
}
