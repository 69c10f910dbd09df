package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Request Logging Middleware Tests
// =============================================================================

// serveLogged runs req through the logging middleware and returns the log
// output and the recorder.
func serveLogged(req *http.Request, handler http.HandlerFunc) (string, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	mw := NewRequestLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	mw.Handler(handler).ServeHTTP(rec, req)
	return buf.String(), rec
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/sign_in", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "Mozilla/5.0 TestBrowser")
	req.Header.Set("HX-Request", "true")

	out, _ := serveLogged(req, okHandler)

	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "path=/auth/sign_in")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "duration_ms=")
	assert.Contains(t, out, "ip=192.168.1.1")
	assert.Contains(t, out, "TestBrowser")
	assert.Contains(t, out, "htmx=true")
}

func TestRequestLoggingMiddleware_LogsClientIPFromProxy(t *testing.T) {
	req := httptest.NewRequest("GET", "/auth", nil)
	req.RemoteAddr = "10.0.0.1:8080"
	req.Header.Set("X-Forwarded-For", "203.0.113.195")

	out, _ := serveLogged(req, okHandler)

	assert.Contains(t, out, "ip=203.0.113.195")
}

func TestRequestLoggingMiddleware_ServerErrorsLogAtWarn(t *testing.T) {
	out, _ := serveLogged(httptest.NewRequest("POST", "/auth/sign_up", nil), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=502")
}

func TestRequestLoggingMiddleware_RedactsSensitiveQueryParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/auth?view=update_password&access_token=secret123&code=abc987", nil)

	out, _ := serveLogged(req, okHandler)

	assert.NotContains(t, out, "secret123")
	assert.NotContains(t, out, "abc987")
	assert.Contains(t, out, "view=update_password")
	assert.Contains(t, out, "access_token=[REDACTED]")
}

func TestRequestLoggingMiddleware_PassesRequestThrough(t *testing.T) {
	called := false
	_, rec := serveLogged(httptest.NewRequest("POST", "/auth/magic_link", nil), func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Header().Set("HX-Push-Url", "/auth?view=sign_in")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("response body"))
	})

	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/auth?view=sign_in", rec.Header().Get("HX-Push-Url"))
	assert.Equal(t, "response body", rec.Body.String())
}

func TestRequestLoggingMiddleware_CapturesFirstStatus(t *testing.T) {
	out, _ := serveLogged(httptest.NewRequest("GET", "/missing", nil), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
	})

	assert.Contains(t, out, "status=404")
}

func TestRequestLoggingMiddleware_RequestID(t *testing.T) {
	out, rec := serveLogged(httptest.NewRequest("GET", "/auth", nil), okHandler)
	id := rec.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Contains(t, out, "request_id="+id)

	req := httptest.NewRequest("GET", "/auth", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	out, rec = serveLogged(req, okHandler)
	assert.Equal(t, "upstream-42", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, out, "request_id=upstream-42")
}

func TestRequestLoggingMiddleware_SkipsNoisyEndpoints(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		out, _ := serveLogged(httptest.NewRequest("GET", path, nil), okHandler)
		assert.Empty(t, out, path)
	}
}
