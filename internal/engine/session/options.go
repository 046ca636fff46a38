package session

import (
	"github.com/dshills/longview/internal/engine/codec"
	"github.com/dshills/longview/internal/event"
)

// Option is a functional option for configuring a Session.
type Option func(*Session)

// WithBus wires the notification bus lifecycle and reload events
// publish on.
func WithBus(b *event.Bus) Option {
	return func(s *Session) {
		s.bus = b
	}
}

// WithViewportLines provides the hosting viewport's line count,
// consulted by the activation guard.
func WithViewportLines(fn func() int) Option {
	return func(s *Session) {
		s.viewportLines = fn
	}
}

// WithCompressionLevel sets the codec level used for chunk storage.
func WithCompressionLevel(level codec.Level) Option {
	return func(s *Session) {
		s.level = level
	}
}
