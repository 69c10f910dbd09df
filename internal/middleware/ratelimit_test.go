package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(max int, window time.Duration) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(max, window)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	assert.True(t, rl.Allow("b"), "keys are independent")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl, now := newTestLimiter(1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.Equal(t, time.Minute, rl.TimeUntilReset("a"))

	*now = now.Add(30 * time.Second)
	assert.Equal(t, 30*time.Second, rl.TimeUntilReset("a"))

	*now = now.Add(31 * time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()
}

func submitRequest(view, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/"+view, nil)
	req.SetPathValue("view", view)
	req.RemoteAddr = ip + ":4242"
	return req
}

func TestSubmitRateLimiter_LimitsPerView(t *testing.T) {
	limiter := NewSubmitRateLimiter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer limiter.Stop()

	calls := 0
	h := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, submitRequest("magic_link", "10.0.0.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, submitRequest("magic_link", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other views and other clients are unaffected.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, submitRequest("sign_in", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, submitRequest("magic_link", "10.0.0.2"))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 7, calls)
}

func TestSubmitRateLimiter_UnknownViewsAreNotTracked(t *testing.T) {
	limiter := NewSubmitRateLimiter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer limiter.Stop()

	calls := 0
	h := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, submitRequest("junk-"+string(rune('a'+i)), "10.0.0.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 20, calls)
	assert.Empty(t, limiter.credentials.entries)
	assert.Empty(t, limiter.messages.entries)

	// The sign_in budget is untouched.
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, submitRequest("sign_in", "10.0.0.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, limiter.credentials.entries, 1)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	assert.Equal(t, "192.168.1.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", getClientIP(req))
}
