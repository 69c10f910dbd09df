package view

import (
	"net/url"

	"github.com/DukeRupert/authui/internal/domain"
)

// Route paths shared by the widget markup and the HTTP handlers.
const (
	PagePath     = "/auth"
	LogoutPath   = "/logout"
	WidgetID     = "auth-widget"
	widgetTarget = "#" + WidgetID
)

// PageURL is the full-page address of a view.
func PageURL(v domain.View) string {
	if v == domain.ViewNone {
		return PagePath
	}
	return PagePath + "?" + url.Values{"view": {string(v)}}.Encode()
}

// SubmitURL is where the form of a view posts to.
func SubmitURL(v domain.View) string {
	return PagePath + "/" + url.PathEscape(string(v))
}

// NavigateURL is the htmx endpoint behind a view link.
func NavigateURL(v domain.View) string {
	return PagePath + "/view/" + url.PathEscape(string(v))
}

// ProviderURL starts a federated sign in.
func ProviderURL(p domain.Provider) string {
	return PagePath + "/providers/" + url.PathEscape(string(p))
}
