package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/longview/internal/engine"
	"github.com/dshills/longview/internal/engine/chunkstore"
	"github.com/dshills/longview/internal/engine/codec"
	"github.com/dshills/longview/internal/engine/ingest"
	"github.com/dshills/longview/internal/engine/linesource"
	"github.com/dshills/longview/internal/engine/window"
	"github.com/dshills/longview/internal/event"
)

// DefaultChunkSize is the chunk capacity used when Activate is given a
// non-positive size.
const DefaultChunkSize = 50000

// Errors returned by session operations.
var (
	ErrNotActivated     = errors.New("chunked session not activated")
	ErrViewportTooLarge = errors.New("viewport height must be smaller than chunk size")
)

// Session is the aggregate chunked-storage state: chunk store, window,
// ingestor and configuration, with a lifecycle bounded by Activate and
// Deactivate. It also owns the normal in-memory source and selects
// which of the two line-source variants the viewer sees.
//
// All chunked state is created on activation and fully discarded on
// deactivation or clear; nothing outlives the session.
type Session struct {
	mu            sync.RWMutex
	id            string
	active        bool
	chunkSize     int
	level         codec.Level
	bus           *event.Bus
	viewportLines func() int

	store    *chunkstore.Store
	window   *window.Window
	ingestor *ingest.Ingestor
	normal   *linesource.Normal
}

// New creates an inactive session with the given options.
func New(opts ...Option) *Session {
	s := &Session{
		normal: linesource.NewNormal(),
		level:  codec.LevelDefault,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate begins a chunked session with the given chunk capacity
// (DefaultChunkSize when non-positive). It fails before any state
// mutation if the hosting viewport's line count is not strictly
// smaller than the chunk size; that bound guarantees a viewport range
// spans at most two adjacent chunks.
//
// Activation resets any previous chunked state and switches the line
// source the viewer sees to the read-only chunked variant.
func (s *Session) Activate(chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if s.viewportLines != nil && s.viewportLines() >= chunkSize {
		return ErrViewportTooLarge
	}

	s.mu.Lock()
	s.chunkSize = chunkSize
	s.buildLocked()
	s.active = true
	s.id = uuid.New().String()
	s.mu.Unlock()

	s.publish(event.TopicSessionActivated, s.ID())
	return nil
}

// Deactivate discards all chunked state and restores the normal line
// source and write mode. It always succeeds, active or not.
func (s *Session) Deactivate() {
	s.mu.Lock()
	s.dropLocked()
	s.active = false
	s.id = ""
	s.mu.Unlock()

	s.publish(event.TopicSessionDeactivated, nil)
}

// Clear discards chunked state without leaving chunked mode, resetting
// for a new load. It always succeeds; outside a session it is a no-op.
func (s *Session) Clear() {
	s.mu.Lock()
	if s.active {
		s.buildLocked()
	}
	s.mu.Unlock()

	s.publish(event.TopicSessionCleared, nil)
}

// buildLocked creates fresh chunked state for the configured chunk
// size. Caller holds the write lock.
func (s *Session) buildLocked() {
	c := codec.New(codec.WithLevel(s.level))
	s.store = chunkstore.New(c)
	s.window = window.New(s.store, s.chunkSize, window.WithNotify(s.onLoaded))
	s.ingestor = ingest.New(s.store, s.chunkSize, ingest.WithWindow(s.window))
}

// dropLocked releases chunked state. Caller holds the write lock.
func (s *Session) dropLocked() {
	s.store = nil
	s.window = nil
	s.ingestor = nil
}

// onLoaded is the window's repaint notification.
func (s *Session) onLoaded(chunkIndex int) {
	s.publish(event.TopicWindowLoaded, chunkIndex)
}

// publish sends on the bus when one is wired.
func (s *Session) publish(topic event.Topic, payload any) {
	if s.bus != nil {
		_ = s.bus.Publish(topic, payload)
	}
}

// AppendLines ingests lines at the logical end of the document.
// Outside an active session it fails with ErrNotActivated rather than
// silently dropping input.
func (s *Session) AppendLines(lines []string) error {
	s.mu.RLock()
	g := s.ingestor
	active := s.active
	s.mu.RUnlock()

	if !active {
		return ErrNotActivated
	}
	if err := g.Append(lines); err != nil {
		return err
	}

	s.publish(event.TopicDocumentAppended, len(lines))
	return nil
}

// Active reports whether a chunked session is in progress.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ID returns the session identifier, or "" outside a session.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// ChunkSize returns the configured chunk capacity.
func (s *Session) ChunkSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunkSize
}

// TotalLines returns the authoritative ingested line count, 0 outside
// a session.
func (s *Session) TotalLines() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return 0
	}
	return s.store.TotalLines()
}

// ChunkCount returns the number of stored chunks, 0 outside a session.
func (s *Session) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return 0
	}
	return s.store.Count()
}

// CompressedSize returns the total stored chunk bytes, 0 outside a
// session.
func (s *Session) CompressedSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return 0
	}
	return s.store.CompressedSize()
}

// Pending reports whether a window reload is in flight.
func (s *Session) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active && s.window.Pending()
}

// Normal returns the in-memory source used outside chunked mode.
func (s *Session) Normal() *linesource.Normal {
	return s.normal
}

// Source returns the line-source variant the viewer should hold:
// the chunked source while a session is active, the normal source
// otherwise.
func (s *Session) Source() engine.LineSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active {
		return &chunked{s: s}
	}
	return s.normal
}

// chunked is the read-only line-source variant backed by the window.
type chunked struct {
	s *Session
}

// Resolve serves the viewport range through the window; outside a
// session every position resolves to an empty string.
func (c *chunked) Resolve(start, size int) []string {
	c.s.mu.RLock()
	w := c.s.window
	active := c.s.active
	c.s.mu.RUnlock()

	if !active {
		if size <= 0 {
			return nil
		}
		return make([]string, size)
	}
	return w.Resolve(start, size)
}

// LineCount returns the session's total line count.
func (c *chunked) LineCount() int {
	return c.s.TotalLines()
}

// ReadOnly reports true: chunked content only grows through
// AppendLines.
func (c *chunked) ReadOnly() bool {
	return true
}
