package follow

import "time"

// Option is a functional option for configuring a Follower.
type Option func(*Follower)

// WithDebounce sets how long write bursts are batched before ingesting.
func WithDebounce(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// WithErrorHandler sets the callback invoked for watch or read errors.
func WithErrorHandler(fn func(error)) Option {
	return func(f *Follower) {
		f.onError = fn
	}
}

// WithStartOffset overrides the byte offset tailing starts from.
// Zero replays the whole file.
func WithStartOffset(offset int64) Option {
	return func(f *Follower) {
		if offset >= 0 {
			f.offset = offset
		}
	}
}

// WithPartial seeds an unterminated trailing line the caller already
// consumed from the file; the next write completes it rather than
// starting a new line.
func WithPartial(line []byte) Option {
	return func(f *Follower) {
		if len(line) > 0 {
			f.partial = append([]byte(nil), line...)
		}
	}
}
