package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// ViewOption is a functional option for configuring a View.
type ViewOption func(*View)

// WithStatus wires the status-line provider.
func WithStatus(fn StatusFunc) ViewOption {
	return func(v *View) {
		if fn != nil {
			v.status = fn
		}
	}
}

// WithStatusStyle sets the status-line colors by tcell color name.
func WithStatusStyle(fg, bg string) ViewOption {
	return func(v *View) {
		v.statusStyle = tcell.StyleDefault.
			Foreground(tcell.GetColor(fg)).
			Background(tcell.GetColor(bg))
	}
}

// WithDrawHook registers a callback invoked with each frame's draw
// duration.
func WithDrawHook(fn func(time.Duration)) ViewOption {
	return func(v *View) {
		v.onDraw = fn
	}
}
