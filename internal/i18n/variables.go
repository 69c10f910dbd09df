// Package i18n holds the label and message table used by the auth widget.
//
// Every view has its own set of labels. Deployments may override any subset
// of them from a YAML file; unspecified labels keep their English defaults.
package i18n

import (
	"strings"

	"github.com/DukeRupert/authui/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Labels is the text shown for one view. Not every view uses every field.
type Labels struct {
	EmailLabel               string `yaml:"email_label,omitempty"`
	EmailInputLabel          string `yaml:"email_input_label,omitempty"`
	EmailInputPlaceholder    string `yaml:"email_input_placeholder,omitempty"`
	PasswordLabel            string `yaml:"password_label,omitempty"`
	PasswordInputPlaceholder string `yaml:"password_input_placeholder,omitempty"`
	PhoneInputLabel          string `yaml:"phone_input_label,omitempty"`
	PhoneInputPlaceholder    string `yaml:"phone_input_placeholder,omitempty"`
	TokenInputLabel          string `yaml:"token_input_label,omitempty"`
	TokenInputPlaceholder    string `yaml:"token_input_placeholder,omitempty"`
	ButtonLabel              string `yaml:"button_label,omitempty"`
	LoadingButtonLabel       string `yaml:"loading_button_label,omitempty"`
	SocialProviderText       string `yaml:"social_provider_text,omitempty"`
	LinkText                 string `yaml:"link_text,omitempty"`
	ConfirmationText         string `yaml:"confirmation_text,omitempty"`
}

// Variables is the complete label table, keyed by view.
type Variables struct {
	SignIn            Labels `yaml:"sign_in,omitempty"`
	SignUp            Labels `yaml:"sign_up,omitempty"`
	ForgottenPassword Labels `yaml:"forgotten_password,omitempty"`
	MagicLink         Labels `yaml:"magic_link,omitempty"`
	UpdatePassword    Labels `yaml:"update_password,omitempty"`
	VerifyOtp         Labels `yaml:"verify_otp,omitempty"`
}

// English returns the default label table.
func English() Variables {
	return Variables{
		SignUp: Labels{
			EmailLabel:               "Email address",
			PasswordLabel:            "Create a Password",
			EmailInputPlaceholder:    "Your email address",
			PasswordInputPlaceholder: "Your password",
			ButtonLabel:              "Sign up",
			LoadingButtonLabel:       "Signing up ...",
			SocialProviderText:       "Sign in with {{provider}}",
			LinkText:                 "Don't have an account? Sign up",
			ConfirmationText:         "Check your email for the confirmation link",
		},
		SignIn: Labels{
			EmailLabel:               "Email address",
			PasswordLabel:            "Your Password",
			EmailInputPlaceholder:    "Your email address",
			PasswordInputPlaceholder: "Your password",
			ButtonLabel:              "Sign in",
			LoadingButtonLabel:       "Signing in ...",
			SocialProviderText:       "Sign in with {{provider}}",
			LinkText:                 "Already have an account? Sign in",
		},
		MagicLink: Labels{
			EmailInputLabel:       "Email address",
			EmailInputPlaceholder: "Your email address",
			ButtonLabel:           "Send Magic Link",
			LoadingButtonLabel:    "Sending Magic Link ...",
			LinkText:              "Send a magic link email",
			ConfirmationText:      "Check your email for the magic link",
		},
		ForgottenPassword: Labels{
			EmailLabel:            "Email address",
			PasswordLabel:         "Your Password",
			EmailInputPlaceholder: "Your email address",
			ButtonLabel:           "Send reset password instructions",
			LoadingButtonLabel:    "Sending reset instructions ...",
			LinkText:              "Forgot your password?",
			ConfirmationText:      "Check your email for the password reset link",
		},
		UpdatePassword: Labels{
			PasswordLabel:            "New password",
			PasswordInputPlaceholder: "Your new password",
			ButtonLabel:              "Update password",
			LoadingButtonLabel:       "Updating password ...",
			ConfirmationText:         "Your password has been updated",
		},
		VerifyOtp: Labels{
			EmailInputLabel:       "Email address",
			EmailInputPlaceholder: "Your email address",
			PhoneInputLabel:       "Phone number",
			PhoneInputPlaceholder: "Your phone number",
			TokenInputLabel:       "Token",
			TokenInputPlaceholder: "Your Otp token",
			ButtonLabel:           "Verify token",
			LoadingButtonLabel:    "Signing in ...",
		},
	}
}

// For returns the labels of a view. ViewNone and unknown views yield empty
// labels.
func (v Variables) For(view domain.View) Labels {
	switch view {
	case domain.ViewSignIn:
		return v.SignIn
	case domain.ViewSignUp:
		return v.SignUp
	case domain.ViewForgottenPassword:
		return v.ForgottenPassword
	case domain.ViewMagicLink:
		return v.MagicLink
	case domain.ViewUpdatePassword:
		return v.UpdatePassword
	case domain.ViewVerifyOtp:
		return v.VerifyOtp
	default:
		return Labels{}
	}
}

// Merge returns base with every non-empty label of override applied on top.
func Merge(base, override Variables) Variables {
	return Variables{
		SignIn:            mergeLabels(base.SignIn, override.SignIn),
		SignUp:            mergeLabels(base.SignUp, override.SignUp),
		ForgottenPassword: mergeLabels(base.ForgottenPassword, override.ForgottenPassword),
		MagicLink:         mergeLabels(base.MagicLink, override.MagicLink),
		UpdatePassword:    mergeLabels(base.UpdatePassword, override.UpdatePassword),
		VerifyOtp:         mergeLabels(base.VerifyOtp, override.VerifyOtp),
	}
}

func mergeLabels(base, o Labels) Labels {
	return Labels{
		EmailLabel:               pick(o.EmailLabel, base.EmailLabel),
		EmailInputLabel:          pick(o.EmailInputLabel, base.EmailInputLabel),
		EmailInputPlaceholder:    pick(o.EmailInputPlaceholder, base.EmailInputPlaceholder),
		PasswordLabel:            pick(o.PasswordLabel, base.PasswordLabel),
		PasswordInputPlaceholder: pick(o.PasswordInputPlaceholder, base.PasswordInputPlaceholder),
		PhoneInputLabel:          pick(o.PhoneInputLabel, base.PhoneInputLabel),
		PhoneInputPlaceholder:    pick(o.PhoneInputPlaceholder, base.PhoneInputPlaceholder),
		TokenInputLabel:          pick(o.TokenInputLabel, base.TokenInputLabel),
		TokenInputPlaceholder:    pick(o.TokenInputPlaceholder, base.TokenInputPlaceholder),
		ButtonLabel:              pick(o.ButtonLabel, base.ButtonLabel),
		LoadingButtonLabel:       pick(o.LoadingButtonLabel, base.LoadingButtonLabel),
		SocialProviderText:       pick(o.SocialProviderText, base.SocialProviderText),
		LinkText:                 pick(o.LinkText, base.LinkText),
		ConfirmationText:         pick(o.ConfirmationText, base.ConfirmationText),
	}
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

// Template replaces every {{key}} placeholder in s with data[key].
// Placeholders without a value are left untouched.
func Template(s string, data map[string]string) string {
	for k, v := range data {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

// ProviderText renders the social provider button text for a view. The magic
// link view borrows the sign in wording.
func (v Variables) ProviderText(view domain.View, provider domain.Provider) string {
	if view == domain.ViewMagicLink {
		view = domain.ViewSignIn
	}
	return Template(v.For(view).SocialProviderText, map[string]string{
		"provider": cases.Title(language.Und).String(string(provider)),
	})
}
