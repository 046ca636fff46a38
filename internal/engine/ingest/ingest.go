// Package ingest grows the document by appending lines at the logical
// end, splitting them across chunk boundaries and persisting each
// touched chunk through the store.
package ingest

import (
	"sync/atomic"

	"github.com/dshills/longview/internal/engine/chunkstore"
)

// Merger is the window surface the hot path uses: when the open tail
// chunk is already resident it is merged in memory instead of
// decompressed from the store, and refreshed after the rewrite.
type Merger interface {
	ResidentChunk(index int) ([]string, bool)
	UpdateChunk(index int, lines []string)
}

// Ingestor appends lines to the logical end of the document.
// Appends are atomic per call: every touched chunk is compressed and
// staged before anything is committed, so a codec failure partway
// through a multi-chunk append leaves the store and the total-line
// counter untouched.
//
// Only one append may be in flight at a time; a concurrent call fails
// with an IngestError of kind IngestErrorBusy rather than corrupting
// chunk boundaries.
type Ingestor struct {
	store     *chunkstore.Store
	window    Merger
	chunkSize int
	inFlight  atomic.Bool
}

// New creates an ingestor writing to the given store. The window
// merger is optional; without it every tail merge reads through the
// store.
func New(store *chunkstore.Store, chunkSize int, opts ...Option) *Ingestor {
	g := &Ingestor{
		store:     store,
		chunkSize: chunkSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Append appends lines at the logical end of the document.
// On success the total line count grows by exactly len(lines) and the
// chunk count tracks ceil(totalLines/chunkSize).
func (g *Ingestor) Append(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if !g.inFlight.CompareAndSwap(false, true) {
		return &IngestError{Kind: IngestErrorBusy, Err: errAppendInFlight}
	}
	defer g.inFlight.Store(false)

	var (
		batch   []chunkstore.Staged
		merged  [][]string
		pos     = g.store.TotalLines()
		pending = lines
	)

	for len(pending) > 0 {
		target := pos / g.chunkSize
		used := pos % g.chunkSize

		var existing []string
		if used > 0 {
			// The resident buffer can lag a commit that landed while a
			// window reload was in flight; trust it only when it holds
			// exactly the open chunk's fill, otherwise the store is
			// authoritative.
			buf, ok := g.residentTail(target)
			if !ok || len(buf) != used {
				var err error
				buf, err = g.store.ReadChunk(target)
				if err != nil {
					return &IngestError{Kind: IngestErrorCodec, Err: err}
				}
			}
			existing = buf
		}

		fit := g.chunkSize - used
		take := len(pending)
		if take > fit {
			take = fit
		}

		content := make([]string, 0, len(existing)+take)
		content = append(content, existing...)
		content = append(content, pending[:take]...)

		staged, err := g.store.Stage(target, content)
		if err != nil {
			return &IngestError{Kind: IngestErrorCodec, Err: err}
		}
		batch = append(batch, staged)
		merged = append(merged, content)

		pos += take
		pending = pending[take:]
	}

	if err := g.store.Commit(batch, len(lines)); err != nil {
		return &IngestError{Kind: IngestErrorStore, Err: err}
	}

	if g.window != nil {
		for i, staged := range batch {
			g.window.UpdateChunk(staged.Index(), merged[i])
		}
	}

	return nil
}

// residentTail consults the window for the open tail chunk.
func (g *Ingestor) residentTail(index int) ([]string, bool) {
	if g.window == nil {
		return nil, false
	}
	return g.window.ResidentChunk(index)
}
