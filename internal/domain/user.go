package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record returned by the backend.
type User struct {
	ID               uuid.UUID      `json:"id"`
	Aud              string         `json:"aud,omitempty"`
	Role             string         `json:"role,omitempty"`
	Email            string         `json:"email,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	PhoneConfirmedAt *time.Time     `json:"phone_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Session is an authenticated backend session.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// AuthResponse is the result of operations that may create a session.
// Session is nil when the backend requires further confirmation (for example
// when email confirmation is enabled on sign up).
type AuthResponse struct {
	User    *User
	Session *Session
}

// OAuthResponse carries the URL the browser must visit to start a federated
// sign in.
type OAuthResponse struct {
	Provider Provider
	URL      string
}

// =============================================================================
// Backend operation parameters
// =============================================================================

// PasswordCredentials are used for password sign in.
type PasswordCredentials struct {
	Email    string
	Password string
}

// SignUpParams are used to register a new user.
type SignUpParams struct {
	Email           string
	Password        string
	EmailRedirectTo string
	Data            map[string]any
}

// ResetPasswordParams request a password reset email.
type ResetPasswordParams struct {
	Email      string
	RedirectTo string
}

// OtpParams request a passwordless (magic link) sign in email.
type OtpParams struct {
	Email           string
	EmailRedirectTo string
}

// UserAttributes are the fields that may be changed on the signed-in user.
type UserAttributes struct {
	Password string
}

// VerifyOtpParams verify a one-time code. Exactly one of Email or Phone is set.
type VerifyOtpParams struct {
	Email string
	Phone string
	Token string
	Type  OtpType
}

// OAuthParams start a federated sign in.
type OAuthParams struct {
	Provider    Provider
	RedirectTo  string
	Scopes      string
	QueryParams map[string]string
}
