package codec

// Option is a functional option for configuring a Codec.
type Option func(*Codec)

// WithLevel sets the compression level.
func WithLevel(level Level) Option {
	return func(c *Codec) {
		c.level = level
	}
}
