// Package linesource provides the normal in-memory line store used
// while a document is small enough to keep fully decompressed. It
// implements the same line-source contract as the chunked session, so
// the lifecycle swaps between the two with a pointer swap.
package linesource

import "sync"

// Normal is a slice-backed line store. All methods are thread-safe.
type Normal struct {
	mu    sync.RWMutex
	lines []string
}

// NewNormal creates an empty normal source.
func NewNormal() *Normal {
	return &Normal{}
}

// Append adds lines at the end of the document.
func (n *Normal) Append(lines []string) {
	if len(lines) == 0 {
		return
	}
	n.mu.Lock()
	n.lines = append(n.lines, lines...)
	n.mu.Unlock()
}

// Line returns the line at index, or an empty string out of range.
func (n *Normal) Line(index int) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if index < 0 || index >= len(n.lines) {
		return ""
	}
	return n.lines[index]
}

// Resolve returns display strings for [start, start+size); positions
// outside the document resolve to empty strings.
func (n *Normal) Resolve(start, size int) []string {
	if size <= 0 {
		return nil
	}
	out := make([]string, size)

	n.mu.RLock()
	for i := range out {
		if idx := start + i; idx >= 0 && idx < len(n.lines) {
			out[i] = n.lines[idx]
		}
	}
	n.mu.RUnlock()

	return out
}

// LineCount returns the number of stored lines.
func (n *Normal) LineCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.lines)
}

// ReadOnly reports false: the normal source accepts appends.
func (n *Normal) ReadOnly() bool {
	return false
}

// Reset discards all lines.
func (n *Normal) Reset() {
	n.mu.Lock()
	n.lines = nil
	n.mu.Unlock()
}
