package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
)

// gomponentComponent lets a gomponents node be rendered wherever a
// templ.Component is expected.
type gomponentComponent struct {
	node g.Node
}

func (c gomponentComponent) Render(_ context.Context, w io.Writer) error {
	return c.node.Render(w)
}

// ToTempl wraps node as a templ.Component.
func ToTempl(node g.Node) templ.Component {
	return gomponentComponent{node: node}
}
