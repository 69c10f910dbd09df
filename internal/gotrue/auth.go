package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/DukeRupert/authui/internal/domain"
)

// Auth is the backend handle for one browser session. It implements
// authform.Backend.
type Auth struct {
	client    *Client
	listeners *listeners

	mu      sync.Mutex
	session *domain.Session
}

// Session returns the current session, or nil when signed out.
func (a *Auth) Session() *domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *Auth) accessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

// setSession stores s and notifies subscribers with event.
func (a *Auth) setSession(s *domain.Session, event domain.AuthEvent) {
	if s != nil && s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Unix() + int64(s.ExpiresIn)
	}

	a.mu.Lock()
	a.session = s
	a.mu.Unlock()

	a.listeners.notify(event, s)
}

// OnAuthStateChange registers fn for auth-state notifications.
func (a *Auth) OnAuthStateChange(fn func(event domain.AuthEvent, session *domain.Session)) domain.Subscription {
	return a.listeners.add(fn)
}

func redirectQuery(redirectTo string) url.Values {
	if redirectTo == "" {
		return nil
	}
	return url.Values{"redirect_to": {redirectTo}}
}

// SignInWithPassword exchanges an email and password for a session.
func (a *Auth) SignInWithPassword(ctx context.Context, creds domain.PasswordCredentials) (*domain.AuthResponse, error) {
	var session domain.Session
	err := a.client.do(ctx, request{
		op:     "gotrue.sign_in_with_password",
		method: http.MethodPost,
		path:   "token",
		query:  url.Values{"grant_type": {"password"}},
		body: map[string]any{
			"email":    creds.Email,
			"password": creds.Password,
		},
	}, &session)
	if err != nil {
		return nil, err
	}

	a.setSession(&session, domain.EventSignedIn)
	return &domain.AuthResponse{User: session.User, Session: &session}, nil
}

// SignUp registers a user. When email confirmation is enabled the backend
// returns the bare user and no session.
func (a *Auth) SignUp(ctx context.Context, params domain.SignUpParams) (*domain.AuthResponse, error) {
	body := map[string]any{
		"email":    params.Email,
		"password": params.Password,
	}
	if params.Data != nil {
		body["data"] = params.Data
	}

	var raw json.RawMessage
	err := a.client.do(ctx, request{
		op:     "gotrue.sign_up",
		method: http.MethodPost,
		path:   "signup",
		query:  redirectQuery(params.EmailRedirectTo),
		body:   body,
	}, &raw)
	if err != nil {
		return nil, err
	}

	resp, err := decodeSessionOrUser(raw)
	if err != nil {
		return nil, domain.Internal(err, "gotrue.sign_up", "failed to decode response")
	}
	if resp.Session != nil {
		a.setSession(resp.Session, domain.EventSignedIn)
	}
	return resp, nil
}

// decodeSessionOrUser handles responses that are either a session (with a
// nested user) or a bare user object.
func decodeSessionOrUser(raw json.RawMessage) (*domain.AuthResponse, error) {
	if len(raw) == 0 {
		return &domain.AuthResponse{}, nil
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	if session.AccessToken != "" {
		return &domain.AuthResponse{User: session.User, Session: &session}, nil
	}
	if session.User != nil {
		return &domain.AuthResponse{User: session.User}, nil
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &domain.AuthResponse{User: &user}, nil
}

// ResetPasswordForEmail sends a password recovery email.
func (a *Auth) ResetPasswordForEmail(ctx context.Context, params domain.ResetPasswordParams) error {
	return a.client.do(ctx, request{
		op:     "gotrue.reset_password_for_email",
		method: http.MethodPost,
		path:   "recover",
		query:  redirectQuery(params.RedirectTo),
		body:   map[string]any{"email": params.Email},
	}, nil)
}

// SignInWithOtp sends a magic link email, creating the user if needed.
func (a *Auth) SignInWithOtp(ctx context.Context, params domain.OtpParams) error {
	return a.client.do(ctx, request{
		op:     "gotrue.sign_in_with_otp",
		method: http.MethodPost,
		path:   "otp",
		query:  redirectQuery(params.EmailRedirectTo),
		body: map[string]any{
			"email":       params.Email,
			"create_user": true,
		},
	}, nil)
}

// UpdateUser changes attributes of the signed-in user.
func (a *Auth) UpdateUser(ctx context.Context, attrs domain.UserAttributes) (*domain.User, error) {
	const op = "gotrue.update_user"

	token := a.accessToken()
	if token == "" {
		return nil, domain.Errorf(domain.EUNAUTHORIZED, op, "Auth session missing!")
	}

	var user domain.User
	err := a.client.do(ctx, request{
		op:     op,
		method: http.MethodPut,
		path:   "user",
		body:   map[string]any{"password": attrs.Password},
		bearer: token,
	}, &user)
	if err != nil {
		return nil, err
	}

	var session domain.Session
	a.mu.Lock()
	if a.session != nil {
		session = *a.session
	}
	a.mu.Unlock()
	session.User = &user

	a.setSession(&session, domain.EventUserUpdated)
	return &user, nil
}

// VerifyOtp checks a one-time code. Verifying a recovery code signals
// PASSWORD_RECOVERY so the caller can ask for a new password.
func (a *Auth) VerifyOtp(ctx context.Context, params domain.VerifyOtpParams) (*domain.AuthResponse, error) {
	body := map[string]any{
		"type":  params.Type,
		"token": params.Token,
	}
	if params.Type.IsPhone() {
		body["phone"] = params.Phone
	} else {
		body["email"] = params.Email
	}

	var raw json.RawMessage
	err := a.client.do(ctx, request{
		op:     "gotrue.verify_otp",
		method: http.MethodPost,
		path:   "verify",
		body:   body,
	}, &raw)
	if err != nil {
		return nil, err
	}

	resp, err := decodeSessionOrUser(raw)
	if err != nil {
		return nil, domain.Internal(err, "gotrue.verify_otp", "failed to decode response")
	}
	if resp.Session != nil {
		event := domain.EventSignedIn
		if params.Type == domain.OtpRecovery {
			event = domain.EventPasswordRecovery
		}
		a.setSession(resp.Session, event)
	}
	return resp, nil
}

// SignInWithOAuth builds the URL that starts a federated sign in. No request
// is made; the browser is expected to navigate to the URL.
func (a *Auth) SignInWithOAuth(ctx context.Context, params domain.OAuthParams) (*domain.OAuthResponse, error) {
	if params.Provider == "" {
		return nil, domain.Invalid("gotrue.sign_in_with_oauth", "A provider is required")
	}

	query := url.Values{"provider": {string(params.Provider)}}
	if params.RedirectTo != "" {
		query.Set("redirect_to", params.RedirectTo)
	}
	if params.Scopes != "" {
		query.Set("scopes", params.Scopes)
	}
	for k, v := range params.QueryParams {
		query.Set(k, v)
	}

	return &domain.OAuthResponse{
		Provider: params.Provider,
		URL:      a.client.endpoint("authorize", query).String(),
	}, nil
}

// SignOut revokes the session on the backend and forgets it locally. A
// session the backend no longer knows about is treated as signed out.
func (a *Auth) SignOut(ctx context.Context) error {
	token := a.accessToken()
	if token != "" {
		err := a.client.do(ctx, request{
			op:     "gotrue.sign_out",
			method: http.MethodPost,
			path:   "logout",
			query:  url.Values{"scope": {"global"}},
			bearer: token,
		}, nil)
		code := domain.ErrorCode(err)
		if err != nil && code != domain.EUNAUTHORIZED && code != domain.ENOTFOUND {
			return err
		}
	}

	a.setSession(nil, domain.EventSignedOut)
	return nil
}
