package authform

import (
	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/i18n"
)

// FieldID names one of the inputs the widget can collect.
type FieldID string

const (
	FieldEmail    FieldID = "email"
	FieldPassword FieldID = "password"
	FieldPhone    FieldID = "phone"
	FieldToken    FieldID = "token"
)

// InputKind is the HTML input type of a field.
type InputKind string

const (
	InputEmail    InputKind = "email"
	InputPassword InputKind = "password"
	InputText     InputKind = "text"
)

// FieldSpec describes one input to render.
type FieldSpec struct {
	ID           FieldID
	Kind         InputKind
	Label        string
	Placeholder  string
	AutoFocus    bool
	AutoComplete string
}

// Plan is the ordered set of inputs and navigation links for a view.
type Plan struct {
	View   domain.View
	Fields []FieldSpec
	Links  []domain.View
}

// Empty reports whether there is nothing to render.
func (p Plan) Empty() bool {
	return len(p.Fields) == 0 && len(p.Links) == 0
}

// PlanFor derives the inputs and links shown for view. It has no side
// effects. An empty view yields an empty plan.
//
// Inputs are added in a fixed order: email, password, phone, token.
func PlanFor(view domain.View, otpType domain.OtpType, magicLink bool, labels i18n.Variables) Plan {
	if view == domain.ViewNone {
		return Plan{}
	}

	l := labels.For(view)
	isPhone := otpType.IsPhone()
	plan := Plan{View: view}

	if view.IsSignView() || view == domain.ViewForgottenPassword || (view == domain.ViewVerifyOtp && !isPhone) {
		label := l.EmailLabel
		if view == domain.ViewMagicLink || view == domain.ViewVerifyOtp {
			label = l.EmailInputLabel
		}
		plan.Fields = append(plan.Fields, FieldSpec{
			ID:          FieldEmail,
			Kind:        InputEmail,
			Label:       label,
			Placeholder: l.EmailInputPlaceholder,
			AutoFocus:   true,
		})
	}

	if view == domain.ViewSignIn || view == domain.ViewSignUp || view == domain.ViewUpdatePassword {
		placeholder := l.PasswordInputPlaceholder
		if view == domain.ViewUpdatePassword {
			placeholder = l.PasswordLabel
		}
		autoComplete := "new-password"
		if view == domain.ViewSignIn {
			autoComplete = "current-password"
		}
		plan.Fields = append(plan.Fields, FieldSpec{
			ID:           FieldPassword,
			Kind:         InputPassword,
			Label:        l.PasswordLabel,
			Placeholder:  placeholder,
			AutoFocus:    view == domain.ViewUpdatePassword,
			AutoComplete: autoComplete,
		})
	}

	if view == domain.ViewVerifyOtp && isPhone {
		plan.Fields = append(plan.Fields, FieldSpec{
			ID:          FieldPhone,
			Kind:        InputText,
			Label:       l.PhoneInputLabel,
			Placeholder: l.PhoneInputPlaceholder,
			AutoFocus:   true,
		})
	}

	if view == domain.ViewVerifyOtp {
		plan.Fields = append(plan.Fields, FieldSpec{
			ID:          FieldToken,
			Kind:        InputText,
			Label:       l.TokenInputLabel,
			Placeholder: l.TokenInputPlaceholder,
		})
	}

	if view.IsSignView() {
		if view != domain.ViewSignIn {
			plan.Links = append(plan.Links, domain.ViewSignIn)
		} else {
			plan.Links = append(plan.Links, domain.ViewSignUp)
		}
	}
	if view == domain.ViewSignIn {
		plan.Links = append(plan.Links, domain.ViewForgottenPassword)
		if magicLink {
			plan.Links = append(plan.Links, domain.ViewMagicLink)
		}
	}
	if view == domain.ViewForgottenPassword || view == domain.ViewVerifyOtp {
		plan.Links = append(plan.Links, domain.ViewSignIn)
	}
	if view == domain.ViewUpdatePassword {
		plan.Links = append(plan.Links, domain.ViewSignUp)
	}

	return plan
}
