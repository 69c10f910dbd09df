// Package session carries the identity backend session between requests in a
// signed cookie.
//
// Only the tokens and a few user fields are stored. The cookie must stay
// under the browser's 4KB limit, so user metadata is left out.
package session

import (
	"net/http"
	"time"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	// CookieName is the name of the cookie that stores the session.
	CookieName = "authui_session"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// CookieMaxAge sets the cookie expiration (7 days = 604800 seconds).
	CookieMaxAge = 7 * 24 * 60 * 60
)

// Value keys inside the cookie.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyTokenType    = "token_type"
	keyExpiresAt    = "expires_at"
	keyUserID       = "user_id"
	keyEmail        = "email"
	keyPhone        = "phone"
)

// Store reads and writes backend sessions.
type Store struct {
	cookies *sessions.CookieStore
	now     func() time.Time
}

// NewStore creates a Store signing cookies with secret.
func NewStore(secret []byte, isSecure bool) *Store {
	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     CookiePath,
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cookies, now: time.Now}
}

// Load returns the session stored in the request, or nil when there is none
// or it has expired. A cookie that fails verification is reported as an error
// and treated as absent.
func (s *Store) Load(r *http.Request) (*domain.Session, error) {
	sess, err := s.cookies.Get(r, CookieName)
	if err != nil {
		return nil, err
	}

	accessToken, _ := sess.Values[keyAccessToken].(string)
	if accessToken == "" {
		return nil, nil
	}

	expiresAt, _ := sess.Values[keyExpiresAt].(int64)
	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		return nil, nil
	}

	refreshToken, _ := sess.Values[keyRefreshToken].(string)
	tokenType, _ := sess.Values[keyTokenType].(string)

	out := &domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		ExpiresAt:    expiresAt,
	}

	if raw, ok := sess.Values[keyUserID].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			email, _ := sess.Values[keyEmail].(string)
			phone, _ := sess.Values[keyPhone].(string)
			out.User = &domain.User{ID: id, Email: email, Phone: phone}
		}
	}
	return out, nil
}

// Save writes s into the response cookie. A nil session clears it.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, session *domain.Session) error {
	if session == nil {
		return s.Clear(w, r)
	}

	// Get never fails fatally; a broken cookie is replaced.
	sess, _ := s.cookies.Get(r, CookieName)
	sess.Options.MaxAge = CookieMaxAge
	sess.Values = map[interface{}]interface{}{
		keyAccessToken:  session.AccessToken,
		keyRefreshToken: session.RefreshToken,
		keyTokenType:    session.TokenType,
		keyExpiresAt:    session.ExpiresAt,
	}
	if session.User != nil {
		sess.Values[keyUserID] = session.User.ID.String()
		sess.Values[keyEmail] = session.User.Email
		sess.Values[keyPhone] = session.User.Phone
	}
	return sess.Save(r, w)
}

// Clear removes the session cookie.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.Get(r, CookieName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
