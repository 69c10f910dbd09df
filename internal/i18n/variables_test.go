package i18n

import (
	"log/slog"
	"os"
	"testing"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnglish_HasConfirmationTexts(t *testing.T) {
	en := English()

	assert.Equal(t, "Check your email for the confirmation link", en.SignUp.ConfirmationText)
	assert.Equal(t, "Check your email for the password reset link", en.ForgottenPassword.ConfirmationText)
	assert.Equal(t, "Check your email for the magic link", en.MagicLink.ConfirmationText)
	assert.Equal(t, "Your password has been updated", en.UpdatePassword.ConfirmationText)
}

func TestFor_UnknownViewIsEmpty(t *testing.T) {
	en := English()

	assert.Equal(t, Labels{}, en.For(domain.ViewNone))
	assert.Equal(t, Labels{}, en.For(domain.View("bogus")))
	assert.Equal(t, en.VerifyOtp, en.For(domain.ViewVerifyOtp))
}

func TestMerge_KeepsUnspecifiedLabels(t *testing.T) {
	override := Variables{
		SignUp: Labels{ButtonLabel: "Create account"},
	}

	merged := Merge(English(), override)

	assert.Equal(t, "Create account", merged.SignUp.ButtonLabel)
	assert.Equal(t, "Signing up ...", merged.SignUp.LoadingButtonLabel)
	assert.Equal(t, English().SignIn, merged.SignIn)
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		data map[string]string
		want string
	}{
		{"single", "Sign in with {{provider}}", map[string]string{"provider": "Github"}, "Sign in with Github"},
		{"repeated", "{{a}}-{{a}}", map[string]string{"a": "x"}, "x-x"},
		{"missing", "Hello {{name}}", map[string]string{}, "Hello {{name}}"},
		{"none", "plain", nil, "plain"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Template(tc.in, tc.data))
		})
	}
}

func TestProviderText(t *testing.T) {
	en := English()

	assert.Equal(t, "Sign in with Github", en.ProviderText(domain.ViewSignIn, "github"))
	assert.Equal(t, "Sign in with Google", en.ProviderText(domain.ViewMagicLink, "GOOGLE"))

	en.SignUp.SocialProviderText = "Sign up with {{provider}}"
	assert.Equal(t, "Sign up with Gitlab", en.ProviderText(domain.ViewSignUp, "gitlab"))
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	vars, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, English(), vars)
}

func TestLoad_MergesYAMLOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	yaml := []byte(`
sign_up:
  button_label: Create account
  confirmation_text: Almost there
verify_otp:
  token_input_label: Code
`)
	require.NoError(t, afero.WriteFile(fs, "/etc/authui/labels.yaml", yaml, 0o644))

	vars, err := Load(fs, "/etc/authui/labels.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Create account", vars.SignUp.ButtonLabel)
	assert.Equal(t, "Almost there", vars.SignUp.ConfirmationText)
	assert.Equal(t, "Your email address", vars.SignUp.EmailInputPlaceholder)
	assert.Equal(t, "Code", vars.VerifyOtp.TokenInputLabel)
}

func TestLoad_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("sign_in: [not, a, map]"), 0o644))

	_, err := Load(fs, "/missing.yaml")
	assert.Error(t, err)

	_, err = Load(fs, "/bad.yaml")
	assert.Error(t, err)
}

func TestStore_ReloadKeepsPreviousOnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/labels.yaml", []byte("sign_in:\n  button_label: Log in\n"), 0o644))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store, err := NewStore(fs, "/labels.yaml", logger)
	require.NoError(t, err)
	assert.Equal(t, "Log in", store.Get().SignIn.ButtonLabel)

	require.NoError(t, afero.WriteFile(fs, "/labels.yaml", []byte("sign_in:\n  button_label: Enter\n"), 0o644))
	require.NoError(t, store.Reload())
	assert.Equal(t, "Enter", store.Get().SignIn.ButtonLabel)

	require.NoError(t, fs.Remove("/labels.yaml"))
	assert.Error(t, store.Reload())
	assert.Equal(t, "Enter", store.Get().SignIn.ButtonLabel)
}
