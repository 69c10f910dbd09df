// Package csrf protects the widget's form posts with a double-submit token.
//
// The token lives in a cookie and is repeated in every widget form as a
// hidden field (or, for htmx links, in hx-vals). A cross-site page can make
// the browser send the cookie but cannot read it, so it cannot repeat it.
// The token is rotated whenever the visitor's session changes.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
)

const (
	// CookieName is the name of the CSRF token cookie.
	CookieName = "csrf_token"

	// FormFieldName is the name of the CSRF token form field.
	FormFieldName = "csrf_token"

	// HeaderName carries the token on requests without a form body.
	HeaderName = "X-CSRF-Token"

	tokenBytes   = 32
	cookieMaxAge = 3600
)

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// issue stores a fresh token in the response cookie and returns it. Lax
// keeps the cookie on the top-level navigation back from an OAuth provider.
func issue(w http.ResponseWriter, isSecure bool) string {
	token, err := newToken()
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// EnsureToken returns the request's token, issuing one if it has none.
func EnsureToken(w http.ResponseWriter, r *http.Request, isSecure bool) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return issue(w, isSecure)
}

// RefreshToken replaces the token. Call it when the session changes so a
// token seen before sign in is not valid after it.
func RefreshToken(w http.ResponseWriter, isSecure bool) string {
	return issue(w, isSecure)
}

// ValidateRequest reports whether the submitted token matches the cookie.
// The form field is preferred; the X-CSRF-Token header is accepted when the
// field is missing.
func ValidateRequest(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}

	submitted := r.FormValue(FormFieldName)
	if submitted == "" {
		submitted = r.Header.Get(HeaderName)
	}
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(submitted)) == 1
}
