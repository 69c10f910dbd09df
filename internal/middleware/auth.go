// Package middleware contains HTTP middleware for the auth widget server.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using a middleware stack approach.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/authui/internal/auth"
	"github.com/DukeRupert/authui/internal/domain"
)

// =============================================================================
// Session Middleware Configuration
// =============================================================================

// SessionStore loads and clears the backend session cookie.
// *session.Store implements it.
type SessionStore interface {
	Load(r *http.Request) (*domain.Session, error)
	Clear(w http.ResponseWriter, r *http.Request) error
}

// SessionMiddleware makes the visitor's backend session available to handlers.
type SessionMiddleware struct {
	store  SessionStore
	logger *slog.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware instance.
func NewSessionMiddleware(store SessionStore, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		store:  store,
		logger: logger,
	}
}

// =============================================================================
// WithSession Middleware
// =============================================================================

// WithSession loads the backend session from the cookie and stores it in the
// request context. Requests without a session continue unchanged; a cookie
// that fails verification is cleared.
//
// The session can be retrieved in handlers using:
//
//	session := auth.GetSessionFromRequest(r)
func (m *SessionMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Load(r)
		if err != nil {
			m.logger.Debug("discarding unreadable session cookie", "error", err)
			if err := m.store.Clear(w, r); err != nil {
				m.logger.Warn("failed to clear session cookie", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		if session != nil {
			r = r.WithContext(auth.SetSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(securityHeaders, logging.Handler, sessionMw.WithSession)
//	handler := stack(mux)
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
