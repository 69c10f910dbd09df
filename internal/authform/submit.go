package authform

import (
	"context"
	"errors"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/metrics"
)

// Result is the outcome of a submission or a federated sign in.
type Result struct {
	// View is the view the submission was made from.
	View domain.View

	// Message is the confirmation text, set only on success paths that
	// require the user to take a further step.
	Message string

	// Err is the captured backend failure. Its text is safe to display.
	Err error

	// Session is set when the backend signed the user in.
	Session *domain.Session

	// RedirectURL is set by federated sign in.
	RedirectURL string
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Submit forwards the collected values to the backend operation of the
// active view. Loading is true until the backend call resolves. If the
// component is unmounted before then, the outcome is returned but not
// applied to the state.
func (c *Component) Submit(ctx context.Context) Result {
	c.mu.Lock()
	view := c.view
	if view == domain.ViewNone {
		c.mu.Unlock()
		return Result{}
	}
	values := c.values
	life := c.life
	c.loading = true
	c.message = ""
	c.err = nil
	c.mu.Unlock()

	res := c.dispatch(ctx, view, values)
	metrics.AuthSubmissions.WithLabelValues(string(view), outcome(res.Err)).Inc()

	if res.Err != nil {
		c.logger.Info("auth submission failed",
			"view", view,
			"code", domain.ErrorCode(res.Err),
			"error", res.Err,
		)
	}

	if life.Err() != nil {
		return res
	}

	c.mu.Lock()
	c.loading = false
	c.message = res.Message
	c.err = res.Err
	c.mu.Unlock()

	return res
}

func (c *Component) dispatch(ctx context.Context, view domain.View, v FormValues) Result {
	labels := c.opts.Labels
	res := Result{View: view}

	switch view {
	case domain.ViewSignIn:
		resp, err := c.backend.SignInWithPassword(ctx, domain.PasswordCredentials{
			Email:    v.Email,
			Password: v.Password,
		})
		res.Err = capture("sign_in", err)
		if err == nil && resp != nil {
			res.Session = resp.Session
		}

	case domain.ViewSignUp:
		resp, err := c.backend.SignUp(ctx, domain.SignUpParams{
			Email:           v.Email,
			Password:        v.Password,
			EmailRedirectTo: c.opts.RedirectTo,
			Data:            c.opts.AdditionalData,
		})
		res.Err = capture("sign_up", err)
		if err == nil && resp != nil {
			res.Session = resp.Session
			// No session means email confirmation is turned on.
			if resp.User != nil && resp.Session == nil {
				res.Message = labels.SignUp.ConfirmationText
			}
		}

	case domain.ViewForgottenPassword:
		err := c.backend.ResetPasswordForEmail(ctx, domain.ResetPasswordParams{
			Email:      v.Email,
			RedirectTo: c.opts.RedirectTo,
		})
		res.Err = capture("forgotten_password", err)
		if err == nil {
			res.Message = labels.ForgottenPassword.ConfirmationText
		}

	case domain.ViewMagicLink:
		err := c.backend.SignInWithOtp(ctx, domain.OtpParams{
			Email:           v.Email,
			EmailRedirectTo: c.opts.RedirectTo,
		})
		res.Err = capture("magic_link", err)
		if err == nil {
			res.Message = labels.MagicLink.ConfirmationText
		}

	case domain.ViewUpdatePassword:
		_, err := c.backend.UpdateUser(ctx, domain.UserAttributes{Password: v.Password})
		res.Err = capture("update_password", err)
		if err == nil {
			res.Message = labels.UpdatePassword.ConfirmationText
		}

	case domain.ViewVerifyOtp:
		params := domain.VerifyOtpParams{Token: v.Token, Type: c.opts.OtpType}
		if c.opts.OtpType.IsPhone() {
			params.Phone = v.Phone
		} else {
			params.Email = v.Email
		}
		resp, err := c.backend.VerifyOtp(ctx, params)
		res.Err = capture("verify_otp", err)
		if err == nil && resp != nil {
			res.Session = resp.Session
		}

	default:
		res.Err = domain.Errorf(domain.EINVALID, "authform.submit", "unknown view %q", view)
	}

	return res
}

// SignInWithProvider starts a federated sign in. Loading is reset once the
// backend answers, regardless of whether the component is still mounted,
// since the browser normally navigates away.
func (c *Component) SignInWithProvider(ctx context.Context, provider domain.Provider) Result {
	c.mu.Lock()
	view := c.view
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	resp, err := c.backend.SignInWithOAuth(ctx, domain.OAuthParams{
		Provider:    provider,
		RedirectTo:  c.opts.RedirectTo,
		Scopes:      c.opts.ProviderScopes[provider],
		QueryParams: c.opts.QueryParams,
	})

	res := Result{View: view, Err: capture("sign_in_with_oauth", err)}
	if err == nil && resp != nil {
		res.RedirectURL = resp.URL
	}
	metrics.ProviderSignIns.WithLabelValues(string(provider), outcome(res.Err)).Inc()

	c.mu.Lock()
	c.loading = false
	c.err = res.Err
	c.mu.Unlock()

	return res
}

// capture turns any backend failure into a *domain.Error whose message can be
// shown to the user. Backend-reported errors pass through unchanged.
func capture(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Unavailable(err, op)
	}
	return domain.Internal(err, op, "authentication failed")
}

// ErrorText returns the banner text for a captured error.
func ErrorText(err error) string {
	return domain.ErrorMessage(err)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
