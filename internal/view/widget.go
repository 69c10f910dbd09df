// Package view renders the auth widget and the page around it.
//
// The widget is built with gomponents and driven by htmx: the form and the
// view links post back to the server and swap the widget in place. Without
// JavaScript the same endpoints answer with a full page.
package view

import (
	"encoding/json"

	"github.com/DukeRupert/authui/internal/authform"
	"github.com/DukeRupert/authui/internal/csrf"
	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

// WidgetData is everything needed to render one widget.
type WidgetData struct {
	State      authform.State
	Plan       authform.Plan
	Options    authform.Options
	CSRFToken  string
	Appearance Appearance
}

// NewWidgetData snapshots a component for rendering.
func NewWidgetData(c *authform.Component, csrfToken string, appearance Appearance) WidgetData {
	return WidgetData{
		State:      c.State(),
		Plan:       c.Plan(),
		Options:    c.Options(),
		CSRFToken:  csrfToken,
		Appearance: appearance,
	}
}

// WidgetComponent is Widget as a templ.Component.
func WidgetComponent(d WidgetData) templ.Component {
	return ToTempl(Widget(d))
}

// Widget renders the widget. An empty view has an empty plan and renders
// nothing at all.
func Widget(d WidgetData) g.Node {
	if d.Plan.Empty() {
		return g.Group(nil)
	}
	view := d.State.View

	a := d.Appearance
	opts := d.Options
	showProviders := view.IsSignView() && len(opts.Providers) > 0

	return h.Div(
		h.ID(WidgetID),
		h.Class(a.Container),
		g.If(showProviders, providerList(d)),
		g.If(showProviders && !opts.OnlyThirdPartyProviders, h.Div(h.Class(a.Divider))),
		g.If(!opts.OnlyThirdPartyProviders, g.Group([]g.Node{
			form(d),
			g.If(d.State.Message != "", h.Span(h.Class(a.Message), h.Role("status"), g.Text(d.State.Message))),
			g.If(d.State.Err != nil, h.Span(h.Class(a.Error), h.Role("alert"), g.Text(authform.ErrorText(d.State.Err)))),
		})),
	)
}

func providerList(d WidgetData) g.Node {
	buttons := make([]g.Node, 0, len(d.Options.Providers))
	for _, p := range d.Options.Providers {
		buttons = append(buttons, h.Form(
			h.Method("post"),
			h.Action(ProviderURL(p)),
			csrfField(d.CSRFToken),
			h.Button(
				h.Type("submit"),
				h.Class(d.Appearance.ProviderButton),
				g.If(d.State.Loading, h.Disabled()),
				g.Text(d.Options.Labels.ProviderText(d.State.View, p)),
			),
		))
	}
	return h.Div(h.Class(d.Appearance.ProviderList), g.Group(buttons))
}

func form(d WidgetData) g.Node {
	a := d.Appearance
	view := d.State.View
	labels := d.Options.Labels.For(view)

	buttonLabel := labels.ButtonLabel
	if d.State.Loading {
		buttonLabel = labels.LoadingButtonLabel
	}

	fields := make([]g.Node, 0, len(d.Plan.Fields))
	for _, f := range d.Plan.Fields {
		fields = append(fields, field(f, d.State.Values, a))
	}

	return h.Form(
		h.ID(string(view)),
		h.Class(a.Form),
		h.Method("post"),
		h.Action(SubmitURL(view)),
		h.AutoComplete("on"),
		hx.Post(SubmitURL(view)),
		hx.Target(widgetTarget),
		hx.Swap("outerHTML"),
		g.Attr("hx-disabled-elt", "find button"),
		csrfField(d.CSRFToken),
		g.Group(fields),
		h.Button(
			h.Type("submit"),
			h.Class(a.Button),
			g.If(d.State.Loading, h.Disabled()),
			g.Text(buttonLabel),
		),
		g.If(d.Options.ShowLinks && len(d.Plan.Links) > 0, links(d)),
	)
}

// field renders one input. Passwords and codes are never echoed back.
func field(f authform.FieldSpec, values authform.FormValues, a Appearance) g.Node {
	id := string(f.ID)
	value := ""
	if f.ID == authform.FieldEmail || f.ID == authform.FieldPhone {
		value = values.Get(f.ID)
	}

	return h.Div(
		h.Label(h.For(id), h.Class(a.Label), g.Text(f.Label)),
		h.Input(
			h.Class(a.Input),
			h.ID(id),
			h.Name(id),
			h.Type(string(f.Kind)),
			g.If(f.Placeholder != "", h.Placeholder(f.Placeholder)),
			g.If(f.AutoFocus, h.AutoFocus()),
			g.If(f.AutoComplete != "", h.AutoComplete(f.AutoComplete)),
			g.If(value != "", h.Value(value)),
		),
	)
}

func links(d WidgetData) g.Node {
	vals := csrfVals(d.CSRFToken)
	anchors := make([]g.Node, 0, len(d.Plan.Links))
	for _, v := range d.Plan.Links {
		anchors = append(anchors, h.A(
			h.Class(d.Appearance.Anchor),
			h.Href(PageURL(v)),
			hx.Post(NavigateURL(v)),
			hx.Target(widgetTarget),
			hx.Swap("outerHTML"),
			g.Attr("hx-push-url", PageURL(v)),
			g.If(vals != "", g.Attr("hx-vals", vals)),
			g.Text(d.Options.Labels.For(v).LinkText),
		))
	}
	return h.Div(h.Class(d.Appearance.Links), g.Group(anchors))
}

func csrfField(token string) g.Node {
	if token == "" {
		return nil
	}
	return h.Input(h.Type("hidden"), h.Name(csrf.FormFieldName), h.Value(token))
}

func csrfVals(token string) string {
	if token == "" {
		return ""
	}
	b, _ := json.Marshal(map[string]string{csrf.FormFieldName: token})
	return string(b)
}
