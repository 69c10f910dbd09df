// Package auth provides request-context helpers for the identity backend
// session.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/DukeRupert/authui/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the key used to store the backend session in context.
	sessionContextKey contextKey = "session"
)

// GetSession retrieves the backend session from the context.
//
// Returns nil if the visitor is not signed in.
func GetSession(ctx context.Context) *domain.Session {
	session, ok := ctx.Value(sessionContextKey).(*domain.Session)
	if !ok {
		return nil
	}
	return session
}

// GetSessionFromRequest is GetSession for a request.
func GetSessionFromRequest(r *http.Request) *domain.Session {
	return GetSession(r.Context())
}

// GetUser returns the user of the session in ctx, if any.
func GetUser(ctx context.Context) *domain.User {
	if session := GetSession(ctx); session != nil {
		return session.User
	}
	return nil
}

// SetSession stores a backend session in the context.
//
// This is typically called by the session loading middleware.
func SetSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
