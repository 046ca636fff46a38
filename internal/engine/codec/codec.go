// Package codec compresses line slices to the byte payloads the chunk
// store holds, and decompresses them back.
package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Errors returned by codec operations.
var (
	ErrLineContainsNewline = errors.New("line contains embedded newline")
)

// Level selects the compression effort for Compress.
type Level int

const (
	// LevelFastest favors throughput over ratio.
	LevelFastest Level = iota
	// LevelDefault is the balanced setting.
	LevelDefault
	// LevelBetter favors ratio over throughput.
	LevelBetter
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelFastest:
		return "fastest"
	case LevelDefault:
		return "default"
	case LevelBetter:
		return "better"
	default:
		return "default"
	}
}

// ParseLevel parses a string into a Level.
// Unknown strings fall back to LevelDefault.
func ParseLevel(s string) Level {
	switch s {
	case "fastest", "fast":
		return LevelFastest
	case "better", "best":
		return LevelBetter
	default:
		return LevelDefault
	}
}

// encoderLevel maps a Level to the zstd encoder setting.
func (l Level) encoderLevel() zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBetter:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedDefault
	}
}

// Codec compresses and decompresses ordered line sequences.
// Lines are joined with a single newline separator before compression,
// so the round trip only holds for lines without embedded newlines;
// Compress rejects such input rather than corrupting line boundaries.
//
// A Codec is stateless and safe for concurrent use.
type Codec struct {
	level Level
}

// New creates a codec with the given options.
func New(opts ...Option) *Codec {
	c := &Codec{level: LevelDefault}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the name of the underlying compression scheme.
func (c *Codec) Name() string {
	return "zstd"
}

// Level returns the configured compression level.
func (c *Codec) Level() Level {
	return c.level
}

// Compress joins lines with newlines and streams them through a zstd
// writer, returning the fully drained compressed buffer.
// An empty input compresses to a nil buffer.
func (c *Codec) Compress(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	for _, line := range lines {
		if strings.ContainsRune(line, '\n') {
			return nil, ErrLineContainsNewline
		}
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(c.level.encoderLevel()))
	if err != nil {
		return nil, err
	}

	if _, err := enc.Write([]byte(strings.Join(lines, "\n"))); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress streams a compressed buffer through a zstd reader to
// completion and splits the decoded text on newlines.
// A nil or empty buffer decompresses to a nil slice.
func (c *Codec) Decompress(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	text, err := io.ReadAll(dec.IOReadCloser())
	if err != nil {
		return nil, err
	}

	return strings.Split(string(text), "\n"), nil
}
