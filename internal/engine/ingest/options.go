package ingest

// Option is a functional option for configuring an Ingestor.
type Option func(*Ingestor)

// WithWindow wires the window merger used for the resident tail-chunk
// hot path.
func WithWindow(w Merger) Option {
	return func(g *Ingestor) {
		g.window = w
	}
}
