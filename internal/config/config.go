// Package config loads and validates longview configuration from TOML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default values applied before any file is read.
const (
	DefaultChunkSize        = 50000
	DefaultChunkedThreshold = 8 << 20 // bytes; files at or above open chunked
	DefaultFollowDebounce   = 100 * time.Millisecond
)

// Config is the application configuration.
type Config struct {
	// ChunkSize is the line capacity of one compressed chunk.
	ChunkSize int `toml:"chunk_size"`
	// Compression selects the codec effort: fastest, default, better.
	Compression string `toml:"compression"`
	// ChunkedThreshold is the file size in bytes at which a document
	// opens in chunked mode instead of fully in memory.
	ChunkedThreshold int64 `toml:"chunked_threshold"`
	// FollowDebounceMS batches rapid file writes in follow mode.
	FollowDebounceMS int `toml:"follow_debounce_ms"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `toml:"log_level"`
	// Theme configures the pager colors.
	Theme Theme `toml:"theme"`
}

// Theme holds pager color names understood by tcell.
type Theme struct {
	StatusFg string `toml:"status_fg"`
	StatusBg string `toml:"status_bg"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ChunkSize:        DefaultChunkSize,
		Compression:      "default",
		ChunkedThreshold: DefaultChunkedThreshold,
		FollowDebounceMS: int(DefaultFollowDebounce / time.Millisecond),
		LogLevel:         "info",
		Theme: Theme{
			StatusFg: "black",
			StatusBg: "silver",
		},
	}
}

// Load reads configuration from path, layered over the defaults.
// An empty path or a missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// FollowDebounce returns the follow-mode debounce as a duration.
func (c Config) FollowDebounce() time.Duration {
	return time.Duration(c.FollowDebounceMS) * time.Millisecond
}

// Validate checks the configuration for invalid settings.
func (c Config) Validate() error {
	if c.ChunkSize < 2 {
		return fmt.Errorf("chunk_size must be at least 2, got %d", c.ChunkSize)
	}
	switch c.Compression {
	case "fastest", "fast", "default", "better", "best":
	default:
		return fmt.Errorf("unknown compression level %q", c.Compression)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.ChunkedThreshold < 0 {
		return fmt.Errorf("chunked_threshold must not be negative")
	}
	if c.FollowDebounceMS < 0 {
		return fmt.Errorf("follow_debounce_ms must not be negative")
	}
	return nil
}
