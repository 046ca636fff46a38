// Package engine defines the line-source contract shared by the normal
// in-memory store and the chunked session, plus re-exports of the types
// callers commonly need from the engine subpackages.
package engine

// LineSource provides read access to document lines for the viewer.
// The viewer holds whichever variant the session lifecycle has selected:
// the normal in-memory source while a document is small enough to keep
// decompressed, or the chunked source while a session is active.
type LineSource interface {
	// Resolve returns display strings for the viewport range
	// [start, start+size). It always returns exactly size elements and
	// never fails: positions outside the document resolve to empty
	// strings, and a chunked source returns placeholder empty strings
	// while a window reload is in flight.
	Resolve(start, size int) []string

	// LineCount returns the number of lines in the document.
	LineCount() int

	// ReadOnly reports whether the source rejects line appends.
	// The chunked source accepts appends only through the session;
	// the viewer must not offer editing while it is active.
	ReadOnly() bool
}
