// Package authform implements the auth widget: it decides which inputs and
// links a view shows, forwards submitted values to the identity backend and
// reflects the outcome (loading, confirmation message, error) back into its
// state.
//
// A Component is the equivalent of one mounted widget. HTTP handlers create
// one per request, load the posted values into it and render its state.
package authform

import (
	"context"
	"log/slog"
	"sync"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/i18n"
)

// Options configure a Component.
type Options struct {
	// View is the initial view. ViewNone renders nothing.
	View domain.View

	// OnViewChange is called after the active view changes, either through
	// SetView or because of an auth-state notification.
	OnViewChange func(domain.View)

	Providers      []domain.Provider
	ProviderScopes map[domain.Provider]string
	QueryParams    map[string]string

	// RedirectTo is forwarded to the backend as the post-action redirect
	// for email links and federated sign in.
	RedirectTo string

	OnlyThirdPartyProviders bool
	MagicLink               bool
	ShowLinks               bool
	OtpType                 domain.OtpType

	// AdditionalData is attached to new users on sign up.
	AdditionalData map[string]any

	// Labels overrides the English label table when non-zero.
	Labels i18n.Variables

	Logger *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		View:      domain.ViewSignIn,
		ShowLinks: true,
		OtpType:   domain.OtpEmail,
		Labels:    i18n.English(),
	}
}

// FormValues are the raw values collected by the widget.
type FormValues struct {
	Email    string
	Password string
	Phone    string
	Token    string
}

// Get returns the value of a field.
func (v FormValues) Get(id FieldID) string {
	switch id {
	case FieldEmail:
		return v.Email
	case FieldPassword:
		return v.Password
	case FieldPhone:
		return v.Phone
	case FieldToken:
		return v.Token
	}
	return ""
}

// State is a snapshot of a Component.
type State struct {
	View    domain.View
	Values  FormValues
	Loading bool
	Message string
	Err     error
}

// Component is a mounted auth widget. It is safe for concurrent use, but
// only one submission is expected to be in flight at a time; the Loading flag
// is the only guard.
type Component struct {
	backend Backend
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	view    domain.View
	values  FormValues
	loading bool
	message string
	err     error

	// life is cancelled on unmount. Results arriving afterwards are not
	// applied to the state.
	life context.Context
}

// New creates an unmounted Component.
func New(backend Backend, opts Options) *Component {
	if opts.OtpType == "" {
		opts.OtpType = domain.OtpEmail
	}
	if opts.Labels == (i18n.Variables{}) {
		opts.Labels = i18n.English()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Component{
		backend: backend,
		opts:    opts,
		logger:  logger,
		view:    opts.View,
		life:    context.Background(),
	}
}

// Options returns the configuration the component was created with.
func (c *Component) Options() Options {
	return c.opts
}

// View returns the active view.
func (c *Component) View() domain.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SetView switches the active view. Collected field values are kept.
func (c *Component) SetView(view domain.View) {
	c.mu.Lock()
	changed := c.view != view
	c.view = view
	c.mu.Unlock()

	if changed && c.opts.OnViewChange != nil {
		c.opts.OnViewChange(view)
	}
}

// SetField records the value of an input.
func (c *Component) SetField(id FieldID, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch id {
	case FieldEmail:
		c.values.Email = value
	case FieldPassword:
		c.values.Password = value
	case FieldPhone:
		c.values.Phone = value
	case FieldToken:
		c.values.Token = value
	}
}

// State returns a snapshot of the component.
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		View:    c.view,
		Values:  c.values,
		Loading: c.loading,
		Message: c.message,
		Err:     c.err,
	}
}

// Loading reports whether a submission is in flight.
func (c *Component) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Plan returns the inputs and links of the active view.
func (c *Component) Plan() Plan {
	return PlanFor(c.View(), c.opts.OtpType, c.opts.MagicLink, c.opts.Labels)
}
