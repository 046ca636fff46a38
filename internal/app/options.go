package app

// Options configures the application at startup.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty uses defaults.
	ConfigPath string
	// File is the document to view. Empty opens an empty document.
	File string
	// Follow tails the file, ingesting new lines as they are written.
	Follow bool
	// Chunked forces chunked mode regardless of file size.
	Chunked bool
	// ChunkSize overrides the configured chunk capacity when positive.
	ChunkSize int
	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
	// LogPath appends logs to a file. Empty discards logs: the pager
	// owns the terminal, so stderr is not available while running.
	LogPath string
}
