package internal

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"laptop-request-catalog/internal/app"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ControllerKey is the context key for the session's controller
	ControllerKey contextKey = "controller"
	// SessionIDKey is the context key for the session id
	SessionIDKey contextKey = "sessionID"
)

const (
	sessionName  = "catalog_session"
	sessionKeyID = "sid"
)

// ControllerFromContext returns the controller attached by withSession.
func ControllerFromContext(ctx context.Context) *app.Controller {
	if c, ok := ctx.Value(ControllerKey).(*app.Controller); ok {
		return c
	}
	return nil
}

// SessionIDFromContext returns the session id attached by withSession.
func SessionIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(SessionIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// withSession resolves the browser session cookie to a controller. A
// missing or unreadable cookie starts a new session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get returns a fresh session alongside any decode error.
		session, err := s.cookies.Get(r, sessionName)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("Discarding unreadable session cookie")
		}

		var id uuid.UUID
		if raw, ok := session.Values[sessionKeyID].(string); ok {
			id, err = uuid.Parse(raw)
		}
		if id == uuid.Nil || err != nil {
			id = uuid.New()
			session.Values[sessionKeyID] = id.String()
		}
		// Saved on every request so the cookie expiry slides with activity.
		if err := session.Save(r, w); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to save session")
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		ctrl := s.Sessions.Get(id)
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("session_id", id.String())
		})

		ctx := context.WithValue(r.Context(), SessionIDKey, id)
		ctx = context.WithValue(ctx, ControllerKey, ctrl)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger attaches logger to every request and logs one line per
// completed request.
func requestLogger(logger zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(logger),
		hlog.RequestIDHandler("request_id", "X-Request-Id"),
		hlog.RemoteAddrHandler("ip"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("took", duration).
				Msg("request")
		}),
	}
}

// ipRateLimiter applies a token bucket per client IP.
type ipRateLimiter struct {
	clock     clockwork.Clock
	rate      rate.Limit
	burst     int
	mu        sync.Mutex
	limiters  map[string]*rateLimiterEntry
	cleanupAt time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(clock clockwork.Clock, perSecond float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		clock:     clock,
		rate:      rate.Limit(perSecond),
		burst:     burst,
		limiters:  make(map[string]*rateLimiterEntry),
		cleanupAt: clock.Now().Add(5 * time.Minute),
	}
}

// Allow reports whether a write from ip may proceed now.
func (l *ipRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.cleanupAt) {
		l.cleanup(now)
		l.cleanupAt = now.Add(5 * time.Minute)
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// cleanup drops limiters idle for ten minutes. Must be called with mu held.
func (l *ipRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-10 * time.Minute)
	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *ipRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			hlog.FromRequest(r).Warn().Str("client_ip", ip).Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(1))
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr, which chi's RealIP may already
// have replaced with a bare address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
