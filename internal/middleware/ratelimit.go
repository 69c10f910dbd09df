package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DukeRupert/authui/internal/domain"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter tracks request counts per key within a fixed window.
type RateLimiter struct {
	maxAttempts int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	stop     chan struct{}
	stopOnce sync.Once
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter. Call Stop to end its cleanup
// goroutine.
func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		entries:     make(map[string]*rateLimitEntry),
		stop:        make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request from the given key should be allowed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.entries[key]

	if !exists || now.Sub(entry.windowStart) > rl.window {
		rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}

	if entry.count < rl.maxAttempts {
		entry.count++
		return true
	}

	return false
}

// TimeUntilReset returns how long until the rate limit resets for a key.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}

	elapsed := rl.now().Sub(entry.windowStart)
	if elapsed >= rl.window {
		return 0
	}

	return rl.window - elapsed
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup periodically removes expired entries to prevent memory leaks.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, entry := range rl.entries {
				if now.Sub(entry.windowStart) > rl.window {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// =============================================================================
// Submit Rate Limiter
// =============================================================================

// SubmitRateLimiter limits form submissions per client IP. Views that make
// the backend send email or SMS get a tighter budget than the others.
type SubmitRateLimiter struct {
	credentials *RateLimiter
	messages    *RateLimiter
	logger      *slog.Logger
}

// NewSubmitRateLimiter creates the limiters with their default budgets:
// - sign_in, update_password, verify_otp: 10 attempts per 15 minutes
// - sign_up, forgotten_password, magic_link: 5 attempts per hour
func NewSubmitRateLimiter(logger *slog.Logger) *SubmitRateLimiter {
	return &SubmitRateLimiter{
		credentials: NewRateLimiter(10, 15*time.Minute),
		messages:    NewRateLimiter(5, time.Hour),
		logger:      logger,
	}
}

// Stop ends the limiters' cleanup goroutines.
func (s *SubmitRateLimiter) Stop() {
	s.credentials.Stop()
	s.messages.Stop()
}

func (s *SubmitRateLimiter) limiterFor(view domain.View) *RateLimiter {
	switch view {
	case domain.ViewSignUp, domain.ViewForgottenPassword, domain.ViewMagicLink:
		return s.messages
	default:
		return s.credentials
	}
}

// Limit returns middleware that rate limits submissions. The view is read
// from the {view} path value, so it must wrap a handler registered with that
// wildcard. Unknown views pass through untracked; the handler rejects them
// without calling the backend.
func (s *SubmitRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view, err := domain.ParseView(r.PathValue("view"))
		if err != nil || view == domain.ViewNone {
			next.ServeHTTP(w, r)
			return
		}
		limiter := s.limiterFor(view)
		key := getClientIP(r) + "|" + string(view)

		if !limiter.Allow(key) {
			s.logger.Warn("rate limit exceeded",
				"ip", getClientIP(r),
				"view", view,
			)

			retryAfter := int(limiter.TimeUntilReset(key).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Helpers
// =============================================================================

// getClientIP extracts the client IP from the request, considering proxy headers.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs: client, proxy1, proxy2
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if clientIP := strings.TrimSpace(ips[0]); clientIP != "" {
			return clientIP
		}
	}

	// nginx
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
