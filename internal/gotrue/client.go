// Package gotrue is a client for GoTrue-compatible identity backends (the
// auth service behind Supabase and similar stacks).
//
// A Client holds the connection settings and is shared by the whole process.
// Each browser session gets its own Auth handle, which carries that
// session's tokens and delivers auth-state notifications to its listeners.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/metrics"
)

// clientInfo is sent in the X-Client-Info header.
const clientInfo = "authui-go/1.0"

// Config holds the settings for a Client.
type Config struct {
	// URL is the root of the auth API, e.g. https://<ref>.supabase.co/auth/v1
	URL string

	// APIKey is the project's public (anon) key.
	APIKey string

	// Timeout bounds every request. Zero means 10 seconds.
	Timeout time.Duration

	// HTTPClient overrides the default client (mainly for tests).
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client talks to the identity backend.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("gotrue: URL is required")
	}
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("gotrue: parse URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gotrue: unsupported URL scheme %q", base.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// Auth returns a handle bound to a browser session. session may be nil for
// visitors who are not signed in.
func (c *Client) Auth(session *domain.Session) *Auth {
	return &Auth{
		client:    c,
		session:   session,
		listeners: newListeners(),
	}
}

// endpoint resolves path against the base URL.
func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}

// request describes one call to the backend.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	bearer string
}

// do performs req and decodes a successful JSON response into out, which may
// be nil. Non-2xx responses are returned as *domain.Error.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return domain.Internal(err, req.op, "failed to encode request")
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query).String(), body)
	if err != nil {
		return domain.Internal(err, req.op, "failed to build request")
	}

	bearer := req.bearer
	if bearer == "" {
		bearer = c.apiKey
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Client-Info", clientInfo)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json;charset=UTF-8")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(req.op, "error").Observe(time.Since(start).Seconds())
		c.logger.Warn("identity backend request failed", "op", req.op, "error", err)
		return domain.Unavailable(err, req.op)
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	metrics.BackendRequestDuration.WithLabelValues(req.op, strconv.Itoa(resp.StatusCode)).Observe(duration.Seconds())
	c.logger.Debug("identity backend request",
		"op", req.op,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Unavailable(err, req.op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(req.op, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.Internal(err, req.op, "failed to decode response")
	}
	return nil
}
