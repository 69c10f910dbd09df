package authform

import (
	"context"

	"github.com/DukeRupert/authui/internal/domain"
)

// Backend is the identity service the widget delegates to. Every method
// forwards its arguments verbatim; the widget performs no validation of its
// own.
type Backend interface {
	SignInWithPassword(ctx context.Context, creds domain.PasswordCredentials) (*domain.AuthResponse, error)
	SignUp(ctx context.Context, params domain.SignUpParams) (*domain.AuthResponse, error)
	ResetPasswordForEmail(ctx context.Context, params domain.ResetPasswordParams) error
	SignInWithOtp(ctx context.Context, params domain.OtpParams) error
	UpdateUser(ctx context.Context, attrs domain.UserAttributes) (*domain.User, error)
	VerifyOtp(ctx context.Context, params domain.VerifyOtpParams) (*domain.AuthResponse, error)
	SignInWithOAuth(ctx context.Context, params domain.OAuthParams) (*domain.OAuthResponse, error)

	// OnAuthStateChange registers fn for auth-state notifications until the
	// returned subscription is cancelled.
	OnAuthStateChange(fn func(event domain.AuthEvent, session *domain.Session)) domain.Subscription
}
