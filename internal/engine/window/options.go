package window

// Option is a functional option for configuring a Window.
type Option func(*Window)

// WithNotify sets the repaint notification invoked after a reload
// commits.
func WithNotify(fn Notify) Option {
	return func(w *Window) {
		w.notify = fn
	}
}
