// Package domain holds the types shared by the auth widget, the identity
// backend client and the HTTP layer.
package domain

// View identifies which form the auth widget shows.
type View string

const (
	ViewNone              View = ""
	ViewSignIn            View = "sign_in"
	ViewSignUp            View = "sign_up"
	ViewForgottenPassword View = "forgotten_password"
	ViewMagicLink         View = "magic_link"
	ViewUpdatePassword    View = "update_password"
	ViewVerifyOtp         View = "verify_otp"
)

// Views lists every non-empty view in display order.
var Views = []View{
	ViewSignIn,
	ViewSignUp,
	ViewForgottenPassword,
	ViewMagicLink,
	ViewUpdatePassword,
	ViewVerifyOtp,
}

// ParseView converts s into a View. The empty string is valid and yields
// ViewNone.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewNone, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return ViewNone, Errorf(EINVALID, "domain.parse_view", "unknown view %q", s)
}

// IsSignView reports whether the view belongs to the sign in / sign up family,
// which offers third-party providers and the sign_in/sign_up toggle link.
func (v View) IsSignView() bool {
	return v == ViewSignIn || v == ViewSignUp || v == ViewMagicLink
}

func (v View) String() string {
	return string(v)
}

// OtpType is the kind of one-time code being verified.
type OtpType string

const (
	OtpEmail       OtpType = "email"
	OtpSMS         OtpType = "sms"
	OtpPhoneChange OtpType = "phone_change"
	OtpSignup      OtpType = "signup"
	OtpInvite      OtpType = "invite"
	OtpMagicLink   OtpType = "magiclink"
	OtpRecovery    OtpType = "recovery"
	OtpEmailChange OtpType = "email_change"
)

// IsPhone reports whether codes of this type are delivered to a phone number.
func (t OtpType) IsPhone() bool {
	return t == OtpSMS || t == OtpPhoneChange
}

// Provider names a federated identity provider (github, google, ...).
type Provider string

// AuthEvent is an auth-state change notification published by the backend
// client.
type AuthEvent string

const (
	EventInitialSession   AuthEvent = "INITIAL_SESSION"
	EventSignedIn         AuthEvent = "SIGNED_IN"
	EventSignedOut        AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed   AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated      AuthEvent = "USER_UPDATED"
	EventPasswordRecovery AuthEvent = "PASSWORD_RECOVERY"
)

// Subscription is a registration for auth-state notifications.
type Subscription interface {
	Unsubscribe()
}
