package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/bitcoindistrict/bookclub-api/internal/metrics"
	"github.com/bitcoindistrict/bookclub-api/internal/platform/apperr"
	jwtpkg "github.com/bitcoindistrict/bookclub-api/internal/platform/jwt"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Identity is what the external identity provider gives us: a stable
// opaque id and a display email. Nothing else is assumed about it.
type Identity struct {
	ID    string
	Email string
}

var slogLogger = slog.Default()

func SetLogger(l *slog.Logger) {
	if l != nil {
		slogLogger = l
	}
}

func AuthMiddleware(jm *jwtpkg.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := identityFromHeader(jm, r)
			if err != nil {
				errorResponse(w, err)
				return
			}
			if ident == nil {
				errorResponse(w, apperr.Unauthorized("missing_token", "missing authorization header", nil))
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), *ident)))
		})
	}
}

// OptionalAuth attaches an identity when a valid bearer token is present
// and lets anonymous requests through. A malformed token is still a 401;
// silently downgrading it to anonymous would mask client bugs.
func OptionalAuth(jm *jwtpkg.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := identityFromHeader(jm, r)
			if err != nil {
				errorResponse(w, err)
				return
			}
			if ident != nil {
				r = r.WithContext(withIdentity(r.Context(), *ident))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityFromHeader(jm *jwtpkg.Manager, r *http.Request) (*Identity, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return nil, nil
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, apperr.Unauthorized("invalid_token", "invalid authorization header", nil)
	}

	claims, err := jm.Parse(parts[1])
	if err != nil {
		return nil, apperr.Unauthorized("invalid_token", "invalid token", err)
	}

	return &Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func withIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, ident)
}

func identityFromCtx(r *http.Request) (Identity, bool) {
	ident, ok := r.Context().Value(ctxKeyIdentity).(Identity)
	return ident, ok
}

// RequireAdmin gates privileged routes on book-club admin membership.
// The check hits the roles table on every request; admin-ness is a row,
// not a token claim, so revocation takes effect immediately.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFromCtx(r)
		if !ok {
			errorResponse(w, apperr.Unauthorized("missing_token", "authentication required", nil))
			return
		}

		admin, err := h.roleSvc.IsAdmin(r.Context(), ident.ID)
		if err != nil {
			errorResponse(w, err)
			return
		}
		if !admin {
			errorResponse(w, apperr.Forbidden("forbidden", "book club admin role required", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RateLimitVotes(r rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := newIPRateLimiter(r, burst, 10*time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.allow(ip) {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":   "rate_limited",
					"message": "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(rw, r)

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		metrics.IncRequest(r.Method, route, status)

		slogLogger.Info("request",
			"method", r.Method,
			"path", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
	entryTTL time.Duration
}

func newIPRateLimiter(limit rate.Limit, burst int, entryTTL time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    limit,
		burst:    burst,
		entryTTL: entryTTL,
	}
}

func (l *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, ts := range l.lastSeen {
		if now.Sub(ts) > l.entryTTL {
			delete(l.limiters, key)
			delete(l.lastSeen, key)
		}
	}

	if limiter, ok := l.limiters[ip]; ok {
		l.lastSeen[ip] = now
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters[ip] = limiter
	l.lastSeen[ip] = now
	return limiter
}

func (l *ipRateLimiter) allow(ip string) bool {
	limiter := l.getLimiter(ip)
	return limiter.Allow()
}

func clientIP(r *http.Request) string {
	if xfwd := r.Header.Get("X-Forwarded-For"); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
