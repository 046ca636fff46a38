package event

// busConfig holds bus construction settings.
type busConfig struct {
	queueSize int
}

// BusOption is a functional option for configuring a Bus.
type BusOption func(*busConfig)

// WithQueueSize sets the async queue capacity.
func WithQueueSize(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}
