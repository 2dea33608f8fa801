package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/zapponejosh/inzalo-api/internal/config"
	"github.com/zapponejosh/inzalo-api/internal/database"
	"github.com/zapponejosh/inzalo-api/internal/logger"
)

// Middleware is a function that wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

type ctxKey string

const userKey ctxKey = "user"

// RequestIDMiddleware tags each request with an ID, reusing a valid
// inbound X-Request-ID. New IDs are UUIDv7 so they sort by time.
func RequestIDMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = newRequestID()
			}

			w.Header().Set("X-Request-ID", requestID)
			ctx := logger.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// LoggingMiddleware logs HTTP requests with structured logging.
func LoggingMiddleware(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			level := slog.LevelInfo
			if wrapped.statusCode >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			log.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", remoteHost(r)),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", logger.RequestID(r.Context())),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// CORSMiddleware adds CORS headers to responses.
func CORSMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RecoveryMiddleware recovers from panics and returns a 500 error.
// withStack adds the goroutine stack to the log record.
func RecoveryMiddleware(log *slog.Logger, withStack bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					attrs := []any{
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("request_id", logger.RequestID(r.Context())),
					}
					if withStack {
						attrs = append(attrs, slog.String("stack", string(debug.Stack())))
					}
					log.Error("panic recovered", attrs...)
					WriteInternalError(w, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// Rate limiting
// =============================================================================

const (
	limiterCleanupInterval = time.Minute
	limiterClientTTL       = 3 * time.Minute
)

type limitedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*limitedClient
	rps        rate.Limit
	burst      int
	trustProxy bool
}

// NewRateLimiter starts a limiter whose idle clients are evicted until
// ctx is cancelled. With trustProxy the client is the first
// X-Forwarded-For hop; otherwise it is the connection's address.
func NewRateLimiter(ctx context.Context, rps float64, burst int, trustProxy bool) *RateLimiter {
	rl := &RateLimiter{
		clients:    make(map[string]*limitedClient),
		rps:        rate.Limit(rps),
		burst:      burst,
		trustProxy: trustProxy,
	}

	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.evict(time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()

	return rl
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &limitedClient{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > limiterClientTTL {
			delete(rl.clients, ip)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r, rl.trustProxy)) {
				w.Header().Set("Retry-After", "1")
				WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded", CodeRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the first X-Forwarded-For hop when the proxy is
// trusted and the header is set, and the connection's host otherwise.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// =============================================================================
// Authentication
// =============================================================================

// AuthMiddleware resolves X-API-Key to a user and stores it in the
// request context. Requests without a valid key get 401.
func AuthMiddleware(db *database.DB, log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				WriteUnauthorized(w, "Missing API key")
				return
			}

			user, err := db.AuthenticateAPIKey(r.Context(), apiKey)
			if err != nil {
				if !errors.Is(err, database.ErrNotFound) {
					logger.Error(r.Context(), "authenticate api key", err)
					WriteInternalError(w, "Internal server error")
					return
				}
				log.Warn("invalid API key attempt",
					slog.String("remote_addr", remoteHost(r)),
					slog.String("path", r.URL.Path),
				)
				WriteUnauthorized(w, "Invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the user when a valid key is present
// but never rejects the request.
func OptionalAuthMiddleware(db *database.DB) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
				if user, err := db.AuthenticateAPIKey(r.Context(), apiKey); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnlyMiddleware requires X-API-Key to equal ADMIN_API_KEY.
// With no admin key configured, admin routes are closed.
func AdminOnlyMiddleware(cfg *config.Config, log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if cfg.AdminAPIKey == "" || apiKey == "" {
				WriteUnauthorized(w, "Admin API key required")
				return
			}

			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.AdminAPIKey)) != 1 {
				log.Warn("invalid admin key attempt",
					slog.String("remote_addr", remoteHost(r)),
					slog.String("path", r.URL.Path),
				)
				WriteForbidden(w, "Invalid admin API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*database.User, bool) {
	u, ok := ctx.Value(userKey).(*database.User)
	return u, ok && u != nil
}
