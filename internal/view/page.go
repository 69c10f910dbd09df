package view

import "github.com/DukeRupert/authui/internal/domain"

// PageData describes the document around the widget.
type PageData struct {
	Title      string
	Stylesheet string

	// User is set when the visitor already has a session. The page then
	// offers a sign out button above the widget.
	User      *domain.User
	CSRFToken string
}

func (d PageData) title() string {
	if d.Title == "" {
		return "Sign in"
	}
	return d.Title
}
