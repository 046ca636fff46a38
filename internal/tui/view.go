// Package tui renders the pager: a tcell-backed view that resolves the
// viewport range against the active line source every frame and
// repaints when the engine signals that placeholder rows have been
// filled in.
package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/longview/internal/engine"
)

// SourceFunc returns the line source the view should read this frame.
// The session lifecycle swaps the variant behind it.
type SourceFunc func() engine.LineSource

// StatusFunc returns the engine state shown on the status line.
type StatusFunc func() Status

// EventRefresh asks the view to repaint. The engine posts it from
// reload and append notifications; an earlier Resolve may have
// returned placeholders.
type EventRefresh struct {
	tcell.EventTime
}

// NewEventRefresh creates a refresh event stamped with the current time.
func NewEventRefresh() *EventRefresh {
	e := &EventRefresh{}
	e.SetEventNow()
	return e
}

// View is the pager screen.
type View struct {
	screen   tcell.Screen
	source   SourceFunc
	status   StatusFunc
	viewport *Viewport

	textStyle   tcell.Style
	statusStyle tcell.Style

	onDraw func(time.Duration)
}

// NewView creates a view on the given screen. The screen must not be
// initialized yet; Run initializes and finalizes it.
func NewView(screen tcell.Screen, source SourceFunc, opts ...ViewOption) *View {
	v := &View{
		screen:      screen,
		source:      source,
		status:      func() Status { return Status{} },
		viewport:    NewViewport(80, 24),
		textStyle:   tcell.StyleDefault,
		statusStyle: tcell.StyleDefault.Reverse(true),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Viewport returns the view's viewport.
func (v *View) Viewport() *Viewport {
	return v.viewport
}

// Refresh schedules a repaint. Safe to call from any goroutine.
func (v *View) Refresh() {
	_ = v.screen.PostEvent(NewEventRefresh())
}

// Run drives the event loop until the user quits or the screen is
// finalized.
func (v *View) Run() error {
	if err := v.screen.Init(); err != nil {
		return err
	}
	defer v.screen.Fini()

	v.syncSize()
	v.draw()

	for {
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.syncSize()
			v.screen.Sync()
			v.draw()
		case *EventRefresh:
			v.draw()
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return nil
			}
			v.draw()
		case nil:
			return nil
		}
	}
}

// handleKey applies pager navigation. It reports whether to quit.
func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.viewport.ScrollBy(-1)
	case tcell.KeyDown:
		v.viewport.ScrollBy(1)
	case tcell.KeyPgUp:
		v.viewport.PageUp()
	case tcell.KeyPgDn:
		v.viewport.PageDown()
	case tcell.KeyHome:
		v.viewport.Top()
	case tcell.KeyEnd:
		v.viewport.Bottom()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			v.viewport.ScrollBy(-1)
		case 'j':
			v.viewport.ScrollBy(1)
		case 'b':
			v.viewport.PageUp()
		case ' ', 'f':
			v.viewport.PageDown()
		case 'g':
			v.viewport.Top()
		case 'G':
			v.viewport.Bottom()
		}
	}
	return false
}

// syncSize fits the viewport to the screen, reserving the status row.
func (v *View) syncSize() {
	w, h := v.screen.Size()
	rows := h - 1
	if rows < 1 {
		rows = 1
	}
	v.viewport.Resize(w, rows)
}

// draw resolves the visible range and paints the screen.
func (v *View) draw() {
	start := time.Now()

	src := v.source()
	v.viewport.SetMaxLine(src.LineCount())

	width := v.viewport.Width()
	rows := v.viewport.Height()
	top := v.viewport.TopLine()
	lines := src.Resolve(top, rows)

	v.screen.Clear()
	for row, line := range lines {
		v.emit(0, row, line, width, v.textStyle)
	}

	_, h := v.screen.Size()
	if h > 1 {
		status := v.status()
		status.Top = top
		status.Total = src.LineCount()
		v.emit(0, h-1, RenderStatus(status, width), width, v.statusStyle)
	}

	v.screen.Show()

	if v.onDraw != nil {
		v.onDraw(time.Since(start))
	}
}

// emit writes a string at (x, y), honoring rune display widths and
// stopping at the given width.
func (v *View) emit(x, y int, s string, width int, style tcell.Style) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x += w
	}
}
