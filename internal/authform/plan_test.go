package authform

import (
	"testing"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/i18n"
	"github.com/stretchr/testify/assert"
)

func fieldIDs(p Plan) []FieldID {
	ids := make([]FieldID, 0, len(p.Fields))
	for _, f := range p.Fields {
		ids = append(ids, f.ID)
	}
	return ids
}

// =============================================================================
// Field Planning Tests
// =============================================================================

func TestPlanFor_Fields(t *testing.T) {
	tests := []struct {
		name    string
		view    domain.View
		otpType domain.OtpType
		want    []FieldID
	}{
		{"sign in", domain.ViewSignIn, domain.OtpEmail, []FieldID{FieldEmail, FieldPassword}},
		{"sign up", domain.ViewSignUp, domain.OtpEmail, []FieldID{FieldEmail, FieldPassword}},
		{"magic link", domain.ViewMagicLink, domain.OtpEmail, []FieldID{FieldEmail}},
		{"forgotten password", domain.ViewForgottenPassword, domain.OtpEmail, []FieldID{FieldEmail}},
		{"update password", domain.ViewUpdatePassword, domain.OtpEmail, []FieldID{FieldPassword}},
		{"verify email otp", domain.ViewVerifyOtp, domain.OtpEmail, []FieldID{FieldEmail, FieldToken}},
		{"verify sms otp", domain.ViewVerifyOtp, domain.OtpSMS, []FieldID{FieldPhone, FieldToken}},
		{"verify phone change otp", domain.ViewVerifyOtp, domain.OtpPhoneChange, []FieldID{FieldPhone, FieldToken}},
		{"verify recovery otp", domain.ViewVerifyOtp, domain.OtpRecovery, []FieldID{FieldEmail, FieldToken}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := PlanFor(tc.view, tc.otpType, false, i18n.English())
			assert.Equal(t, tc.want, fieldIDs(plan))
		})
	}
}

func TestPlanFor_Links(t *testing.T) {
	tests := []struct {
		name      string
		view      domain.View
		magicLink bool
		want      []domain.View
	}{
		{"sign in", domain.ViewSignIn, false, []domain.View{domain.ViewSignUp, domain.ViewForgottenPassword}},
		{"sign in with magic link", domain.ViewSignIn, true, []domain.View{domain.ViewSignUp, domain.ViewForgottenPassword, domain.ViewMagicLink}},
		{"sign up", domain.ViewSignUp, true, []domain.View{domain.ViewSignIn}},
		{"magic link", domain.ViewMagicLink, true, []domain.View{domain.ViewSignIn}},
		{"forgotten password", domain.ViewForgottenPassword, false, []domain.View{domain.ViewSignIn}},
		{"verify otp", domain.ViewVerifyOtp, false, []domain.View{domain.ViewSignIn}},
		{"update password", domain.ViewUpdatePassword, false, []domain.View{domain.ViewSignUp}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := PlanFor(tc.view, domain.OtpEmail, tc.magicLink, i18n.English())
			assert.Equal(t, tc.want, plan.Links)
		})
	}
}

func TestPlanFor_EmptyView(t *testing.T) {
	plan := PlanFor(domain.ViewNone, domain.OtpEmail, true, i18n.English())

	assert.True(t, plan.Empty())
	assert.Empty(t, plan.Fields)
	assert.Empty(t, plan.Links)
}

func TestPlanFor_PasswordAttributes(t *testing.T) {
	en := i18n.English()

	signIn := PlanFor(domain.ViewSignIn, domain.OtpEmail, false, en).Fields[1]
	assert.Equal(t, "current-password", signIn.AutoComplete)
	assert.False(t, signIn.AutoFocus)
	assert.Equal(t, en.SignIn.PasswordInputPlaceholder, signIn.Placeholder)

	signUp := PlanFor(domain.ViewSignUp, domain.OtpEmail, false, en).Fields[1]
	assert.Equal(t, "new-password", signUp.AutoComplete)
	assert.False(t, signUp.AutoFocus)

	update := PlanFor(domain.ViewUpdatePassword, domain.OtpEmail, false, en).Fields[0]
	assert.Equal(t, "new-password", update.AutoComplete)
	assert.True(t, update.AutoFocus)
	assert.Equal(t, en.UpdatePassword.PasswordLabel, update.Placeholder)
}

func TestPlanFor_EmailLabel(t *testing.T) {
	en := i18n.English()
	en.SignIn.EmailLabel = "Sign in email"
	en.MagicLink.EmailInputLabel = "Magic email"
	en.VerifyOtp.EmailInputLabel = "Otp email"

	assert.Equal(t, "Sign in email", PlanFor(domain.ViewSignIn, domain.OtpEmail, false, en).Fields[0].Label)
	assert.Equal(t, "Magic email", PlanFor(domain.ViewMagicLink, domain.OtpEmail, false, en).Fields[0].Label)
	assert.Equal(t, "Otp email", PlanFor(domain.ViewVerifyOtp, domain.OtpEmail, false, en).Fields[0].Label)

	email := PlanFor(domain.ViewSignUp, domain.OtpEmail, false, en).Fields[0]
	assert.Equal(t, InputEmail, email.Kind)
	assert.True(t, email.AutoFocus)
}

func TestPlanFor_PhoneAndToken(t *testing.T) {
	en := i18n.English()
	plan := PlanFor(domain.ViewVerifyOtp, domain.OtpSMS, false, en)

	phone, token := plan.Fields[0], plan.Fields[1]
	assert.Equal(t, InputText, phone.Kind)
	assert.True(t, phone.AutoFocus)
	assert.Equal(t, en.VerifyOtp.PhoneInputLabel, phone.Label)
	assert.Equal(t, InputText, token.Kind)
	assert.False(t, token.AutoFocus)
	assert.Equal(t, en.VerifyOtp.TokenInputPlaceholder, token.Placeholder)
}
