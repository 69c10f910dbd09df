// Package handler contains HTTP handlers for the auth widget server.
//
// This file implements the widget endpoints: showing a view, submitting its
// form, switching views, federated sign in and sign out.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/DukeRupert/authui/internal/auth"
	"github.com/DukeRupert/authui/internal/authform"
	"github.com/DukeRupert/authui/internal/csrf"
	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/i18n"
	"github.com/DukeRupert/authui/internal/view"
	"github.com/a-h/templ"
)

// =============================================================================
// Handler Configuration
// =============================================================================

// Backend is the identity backend bound to one browser session.
// *gotrue.Auth implements it.
type Backend interface {
	authform.Backend

	// Session returns the session after the latest operation, or nil when
	// signed out.
	Session() *domain.Session

	SignOut(ctx context.Context) error
}

// BackendFactory returns a Backend for the visitor's current session, which
// is nil when they are not signed in.
type BackendFactory func(session *domain.Session) Backend

// SessionWriter persists the backend session between requests.
// *session.Store implements it.
type SessionWriter interface {
	Save(w http.ResponseWriter, r *http.Request, session *domain.Session) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// AuthConfig holds the widget settings shared by every request.
type AuthConfig struct {
	// Options is the base configuration of every mounted widget. Its View is
	// the view shown when none is requested.
	Options authform.Options

	// Labels returns the current label table. When nil, Options.Labels is
	// used as is.
	Labels func() i18n.Variables

	Appearance view.Appearance
	Stylesheet string

	// AfterSignInURL is where the browser goes once a session exists.
	AfterSignInURL string

	// IsSecure sets the Secure flag on cookies (true in production).
	IsSecure bool
}

// AuthHandler serves the auth widget.
//
// Routes handled:
// - GET  /auth                      -> ShowAuth
// - POST /auth/{view}               -> Submit
// - POST /auth/view/{view}          -> Navigate
// - POST /auth/providers/{provider} -> Provider
// - POST /logout                    -> Logout
// - GET  /                          -> Home
type AuthHandler struct {
	backend  BackendFactory
	sessions SessionWriter
	cfg      AuthConfig
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
//
// Example usage in main.go:
//
//	authHandler := handler.NewAuthHandler(
//	    func(s *domain.Session) handler.Backend { return client.Auth(s) },
//	    sessionStore, authCfg, logger)
func NewAuthHandler(backend BackendFactory, sessions SessionWriter, cfg AuthConfig, logger *slog.Logger) *AuthHandler {
	if cfg.AfterSignInURL == "" {
		cfg.AfterSignInURL = "/"
	}
	return &AuthHandler{
		backend:  backend,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// RegisterRoutes registers the widget routes on mux. submitLimit wraps the
// form submission route; pass nil to leave it unlimited.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, submitLimit func(http.Handler) http.Handler) {
	submit := http.Handler(http.HandlerFunc(h.Submit))
	if submitLimit != nil {
		submit = submitLimit(submit)
	}

	mux.HandleFunc("GET /auth", h.ShowAuth)
	mux.Handle("POST /auth/{view}", submit)
	mux.HandleFunc("POST /auth/view/{view}", h.Navigate)
	mux.HandleFunc("POST /auth/providers/{provider}", h.Provider)
	mux.HandleFunc("POST "+view.LogoutPath, h.Logout)
	mux.HandleFunc("GET /{$}", h.Home)
}

// =============================================================================
// Handlers
// =============================================================================

// ShowAuth renders the widget page. The view comes from the "view" query
// parameter and falls back to the configured default.
func (h *AuthHandler) ShowAuth(w http.ResponseWriter, r *http.Request) {
	v := h.cfg.Options.View
	if q := r.URL.Query().Get("view"); q != "" {
		parsed, err := domain.ParseView(q)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		v = parsed
	}

	c := h.newComponent(auth.GetSessionFromRequest(r), v, nil)
	h.render(w, r, c, auth.GetUser(r.Context()), http.StatusOK, "")
}

// Submit mounts a widget for the posted view, loads the posted values and
// forwards them to the backend.
//
// A new session sends the browser to AfterSignInURL. An auth-state change
// that moves the widget to another view (a verified recovery code, an
// updated password) re-renders that view and updates the address bar.
func (h *AuthHandler) Submit(w http.ResponseWriter, r *http.Request) {
	v, err := domain.ParseView(r.PathValue("view"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if !h.validCSRF(w, r) {
		return
	}

	before := auth.GetSessionFromRequest(r)
	backend := h.backend(before)

	viewChanged := false
	c := authform.New(backend, h.options(v, func(domain.View) { viewChanged = true }))
	unmount := c.Mount(r.Context())
	defer unmount()

	for _, f := range c.Plan().Fields {
		c.SetField(f.ID, r.PostFormValue(string(f.ID)))
	}

	res := c.Submit(r.Context())

	// A new session gets a new CSRF token.
	var token string
	after := backend.Session()
	if after != before {
		if err := h.sessions.Save(w, r, after); err != nil {
			h.logger.Error("failed to persist session", "error", err, "view", v)
		}
		token = csrf.RefreshToken(w, h.cfg.IsSecure)
	}

	if res.Session != nil && !viewChanged {
		h.redirect(w, r, h.cfg.AfterSignInURL)
		return
	}

	if viewChanged && isHTMX(r) {
		w.Header().Set("HX-Push-Url", view.PageURL(c.View()))
	}

	var user *domain.User
	if after != nil {
		user = after.User
	}
	h.render(w, r, c, user, h.statusFor(r, res.Err), token)
}

// Navigate switches the widget to another view. htmx requests get the new
// widget; other clients are redirected to the view's page.
func (h *AuthHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	v, err := domain.ParseView(r.PathValue("view"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if !h.validCSRF(w, r) {
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, view.PageURL(v), http.StatusSeeOther)
		return
	}

	c := h.newComponent(auth.GetSessionFromRequest(r), h.cfg.Options.View, nil)
	c.SetView(v)
	h.render(w, r, c, auth.GetUser(r.Context()), http.StatusOK, "")
}

// Provider starts a federated sign in by sending the browser to the
// backend's authorize URL.
func (h *AuthHandler) Provider(w http.ResponseWriter, r *http.Request) {
	provider := domain.Provider(r.PathValue("provider"))
	if !slices.Contains(h.cfg.Options.Providers, provider) {
		ErrorResponse(w, r, h.logger, domain.Errorf(domain.EINVALID, "handler.provider", "unknown provider %q", provider))
		return
	}
	if !h.validCSRF(w, r) {
		return
	}

	c := h.newComponent(auth.GetSessionFromRequest(r), domain.ViewSignIn, nil)
	res := c.SignInWithProvider(r.Context(), provider)
	if !res.OK() {
		h.render(w, r, c, auth.GetUser(r.Context()), h.statusFor(r, res.Err), "")
		return
	}

	h.redirect(w, r, res.RedirectURL)
}

// Logout signs out on the backend and clears the session cookie. The local
// session is cleared even when the backend cannot be reached.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.validCSRF(w, r) {
		return
	}

	if session := auth.GetSessionFromRequest(r); session != nil {
		if err := h.backend(session).SignOut(r.Context()); err != nil {
			h.logger.Warn("backend sign out failed", "error", err)
		}
	}

	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Error("failed to clear session", "error", err)
	}
	csrf.RefreshToken(w, h.cfg.IsSecure)

	h.redirect(w, r, view.PageURL(domain.ViewSignIn))
}

// Home shows who is signed in, or sends visitors without a session to the
// widget.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		http.Redirect(w, r, view.PageURL(h.cfg.Options.View), http.StatusSeeOther)
		return
	}

	token := csrf.EnsureToken(w, r, h.cfg.IsSecure)
	page := view.Page(view.PageData{
		Title:      "Account",
		Stylesheet: h.cfg.Stylesheet,
		User:       user,
		CSRFToken:  token,
	}, templ.NopComponent)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render home page", "error", err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// options returns the widget options for one request.
func (h *AuthHandler) options(v domain.View, onViewChange func(domain.View)) authform.Options {
	opts := h.cfg.Options
	opts.View = v
	opts.OnViewChange = onViewChange
	opts.Logger = h.logger
	if h.cfg.Labels != nil {
		opts.Labels = h.cfg.Labels()
	}
	return opts
}

func (h *AuthHandler) newComponent(session *domain.Session, v domain.View, onViewChange func(domain.View)) *authform.Component {
	return authform.New(h.backend(session), h.options(v, onViewChange))
}

// render writes the widget: the fragment alone for htmx, otherwise the full
// page. An empty token means the request's token is reused.
func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, c *authform.Component, user *domain.User, status int, token string) {
	if token == "" {
		token = csrf.EnsureToken(w, r, h.cfg.IsSecure)
	}
	widget := view.WidgetComponent(view.NewWidgetData(c, token, h.cfg.Appearance))

	var component templ.Component = widget
	if !isHTMX(r) {
		opts := c.Options()
		component = view.Page(view.PageData{
			Title:      opts.Labels.For(c.View()).ButtonLabel,
			Stylesheet: h.cfg.Stylesheet,
			User:       user,
			CSRFToken:  token,
		}, widget)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render auth widget", "error", err, "view", c.View())
	}
}

// statusFor picks the response status for a rendered outcome. htmx only
// swaps 2xx responses, so htmx requests always get 200 and see the error in
// the widget.
func (h *AuthHandler) statusFor(r *http.Request, err error) int {
	if err == nil || isHTMX(r) {
		return http.StatusOK
	}
	return ErrorCodeToHTTPStatus(domain.ErrorCode(err))
}

// redirect sends the browser to url, using HX-Redirect for htmx requests so
// the whole page navigates.
func (h *AuthHandler) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// validCSRF checks the double-submit token and writes a 403 when it fails.
func (h *AuthHandler) validCSRF(w http.ResponseWriter, r *http.Request) bool {
	if csrf.ValidateRequest(r) {
		return true
	}
	ForbiddenResponse(w, r, h.logger)
	return false
}

// isHTMX reports whether the request was made by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
