// Package window keeps three decompressed chunks resident around the
// viewer's position and reloads them asynchronously as it moves.
package window

import "sync"

// ChunkReader is the read surface the window needs from the chunk store.
type ChunkReader interface {
	// ReadChunk returns the decompressed lines of a chunk; out-of-bounds
	// indices yield an empty slice, not an error.
	ReadChunk(index int) ([]string, error)
	// Count returns the number of stored chunks.
	Count() int
	// TotalLines returns the authoritative line count.
	TotalLines() int
}

// Notify is invoked after a reload commits, with the chunk index that
// was loaded. The viewer re-queries Resolve in response, since an
// earlier call may have returned placeholders.
type Notify func(chunkIndex int)

// slot identifies one of the three window buffers.
type slot int

const (
	slotPrevious slot = iota
	slotCurrent
	slotNext
)

// Window keeps at most three decompressed chunk buffers resident:
// the chunk covering the viewport plus its two neighbors. Resolve is
// synchronous and side-effect-light; all decompression happens inside
// a reload goroutine keyed by the chunk index it was requested for, so
// a superseded reload's results are discarded rather than committed.
type Window struct {
	mu        sync.Mutex
	store     ChunkReader
	chunkSize int
	notify    Notify

	previous []string
	current  []string
	next     []string

	// currentChunk is the chunk index the current buffer corresponds
	// to; previous and next always track currentChunk-1 and +1.
	// -1 means nothing is resident yet.
	currentChunk int

	// generation increments on every retarget; reloads carry the
	// generation they were launched under and commit only if it is
	// still live.
	generation uint64

	pending bool
}

// New creates a window over the given chunk store.
func New(store ChunkReader, chunkSize int, opts ...Option) *Window {
	w := &Window{
		store:        store,
		chunkSize:    chunkSize,
		currentChunk: -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Resolve returns display strings for the viewport range
// [start, start+size). It always returns exactly size elements.
//
// When the requested chunk is resident (cache hit) each line is served
// from whichever buffer owns its chunk; positions past the end of the
// document, or in a buffer that is absent or short, resolve to empty
// strings. That is the normal condition at the very end of the
// document, not an error.
//
// When the requested chunk differs from the resident one (cache miss)
// the window retargets immediately, returns placeholder empty strings,
// and schedules an asynchronous reload of the target chunk and its
// neighbors. Setting the target synchronously doubles as the
// re-entrancy guard: a second miss for the same chunk arriving before
// the reload completes is a cache hit at this check and triggers
// nothing.
func (w *Window) Resolve(start, size int) []string {
	if size <= 0 {
		return nil
	}
	out := make([]string, size)

	requested := 0
	if start > 0 {
		requested = start / w.chunkSize
	}

	w.mu.Lock()
	if requested != w.currentChunk {
		w.currentChunk = requested
		w.generation++
		gen := w.generation
		w.previous, w.current, w.next = nil, nil, nil
		w.pending = true
		w.mu.Unlock()

		go w.reload(gen, requested)
		return out
	}

	total := w.store.TotalLines()
	for i := range out {
		line := start + i
		if line < 0 || line >= total {
			continue
		}
		offset := line % w.chunkSize

		var buf []string
		switch line / w.chunkSize {
		case w.currentChunk:
			buf = w.current
		case w.currentChunk - 1:
			buf = w.previous
		case w.currentChunk + 1:
			buf = w.next
		}
		if offset < len(buf) {
			out[i] = buf[offset]
		}
	}
	w.mu.Unlock()

	return out
}

// reload decompresses the target chunk into current first, since it
// covers the visible rows, then the neighbors. Each install re-checks
// the generation so results landing after a retarget are dropped.
func (w *Window) reload(gen uint64, target int) {
	if !w.install(gen, slotCurrent, w.load(target)) {
		return
	}
	if !w.install(gen, slotPrevious, w.load(target-1)) {
		return
	}
	if !w.install(gen, slotNext, w.load(target+1)) {
		return
	}

	w.mu.Lock()
	if gen != w.generation {
		w.mu.Unlock()
		return
	}
	w.pending = false
	notify := w.notify
	w.mu.Unlock()

	if notify != nil {
		notify(target)
	}
}

// load reads one chunk, treating negative indices and read failures as
// absent chunks.
func (w *Window) load(index int) []string {
	if index < 0 {
		return nil
	}
	lines, err := w.store.ReadChunk(index)
	if err != nil {
		return nil
	}
	return lines
}

// install commits one buffer if the reload generation is still live.
// It reports whether the reload should continue.
func (w *Window) install(gen uint64, s slot, lines []string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		return false
	}
	switch s {
	case slotPrevious:
		w.previous = lines
	case slotCurrent:
		w.current = lines
	case slotNext:
		w.next = lines
	}
	return true
}

// Pending reports whether a reload is in flight for the resident chunk.
func (w *Window) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// CurrentChunk returns the chunk index the window is targeting,
// or -1 when nothing is resident.
func (w *Window) CurrentChunk() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentChunk
}

// Invalidate forgets the resident target so the next Resolve misses
// and reloads. Any in-flight reload is superseded.
func (w *Window) Invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentChunk = -1
	w.generation++
	w.previous, w.current, w.next = nil, nil, nil
	w.pending = false
}

// ResidentChunk returns a copy of the current buffer when it holds the
// given chunk and no reload is in flight. The ingestion hot path uses
// this to merge into the open tail chunk without a redundant
// decompress.
func (w *Window) ResidentChunk(index int) ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending || index != w.currentChunk || w.current == nil {
		return nil, false
	}
	return append([]string(nil), w.current...), true
}

// UpdateChunk refreshes whichever buffer holds the given chunk after
// its stored content was rewritten. It is a no-op while a reload is in
// flight; the reload will observe the store's newer content or the
// next miss will.
func (w *Window) UpdateChunk(index int, lines []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending || w.currentChunk < 0 {
		return
	}
	switch index {
	case w.currentChunk:
		w.current = append([]string(nil), lines...)
	case w.currentChunk - 1:
		w.previous = append([]string(nil), lines...)
	case w.currentChunk + 1:
		w.next = append([]string(nil), lines...)
	}
}
