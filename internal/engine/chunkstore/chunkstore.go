// Package chunkstore holds the document as an ordered sequence of
// compressed fixed-capacity chunks, only the last of which may be
// partial.
package chunkstore

import (
	"errors"
	"sync"

	"github.com/dshills/longview/internal/engine/codec"
)

// Errors returned by store operations.
var (
	ErrChunkGap = errors.New("chunk index beyond store tail")
)

// chunk is one compressed chunk record. The decompressed line count is
// carried alongside the payload so observability never decompresses.
type chunk struct {
	data  []byte
	lines int
}

// Store owns the ordered sequence of compressed chunks and the
// authoritative total-line counter. Chunk index equals position in the
// sequence. All methods are thread-safe, but the store provides no
// ordering between concurrent writers; callers serialize writes.
type Store struct {
	mu         sync.RWMutex
	codec      *codec.Codec
	chunks     []chunk
	totalLines int
	compressed int
}

// New creates an empty store backed by the given codec.
func New(c *codec.Codec) *Store {
	return &Store{codec: c}
}

// ReadChunk decompresses and returns the lines of the chunk at index.
// An out-of-bounds index yields an empty slice, not an error: callers
// probe speculatively for neighbor chunks that may not exist yet.
func (s *Store) ReadChunk(index int) ([]string, error) {
	s.mu.RLock()
	if index < 0 || index >= len(s.chunks) {
		s.mu.RUnlock()
		return nil, nil
	}
	data := s.chunks[index].data
	s.mu.RUnlock()

	return s.codec.Decompress(data)
}

// WriteChunk compresses lines and stores them at index. If index equals
// the current chunk count the chunk is appended; if it is below the
// count the existing chunk is overwritten in place. An index beyond the
// tail is a caller contract violation and returns ErrChunkGap.
//
// WriteChunk does not touch the total-line counter; use Commit for
// transactional multi-chunk appends.
func (s *Store) WriteChunk(index int, lines []string) error {
	staged, err := s.Stage(index, lines)
	if err != nil {
		return err
	}
	return s.Commit([]Staged{staged}, 0)
}

// Staged is a compressed chunk awaiting commit. Staging performs all
// codec work outside the store lock so a failing compression leaves the
// store untouched.
type Staged struct {
	index int
	data  []byte
	lines int
}

// Index returns the chunk index the stage targets.
func (st Staged) Index() int { return st.index }

// Lines returns the decompressed line count of the stage.
func (st Staged) Lines() int { return st.lines }

// Stage compresses lines for the chunk at index without modifying the
// store. The result is committed later with Commit.
func (s *Store) Stage(index int, lines []string) (Staged, error) {
	data, err := s.codec.Compress(lines)
	if err != nil {
		return Staged{}, err
	}
	return Staged{index: index, data: data, lines: len(lines)}, nil
}

// Commit installs a batch of staged chunks and advances the total-line
// counter by newLines in one step. The whole batch is validated before
// any chunk is installed: on ErrChunkGap the store is unchanged.
func (s *Store) Commit(batch []Staged, newLines int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate against the length the sequence will have as the batch
	// installs in order.
	count := len(s.chunks)
	for _, st := range batch {
		if st.index < 0 || st.index > count {
			return ErrChunkGap
		}
		if st.index == count {
			count++
		}
	}

	for _, st := range batch {
		if st.index == len(s.chunks) {
			s.chunks = append(s.chunks, chunk{data: st.data, lines: st.lines})
		} else {
			s.compressed -= len(s.chunks[st.index].data)
			s.chunks[st.index] = chunk{data: st.data, lines: st.lines}
		}
		s.compressed += len(st.data)
	}
	s.totalLines += newLines

	return nil
}

// AddLines advances the total-line counter without touching chunks.
func (s *Store) AddLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalLines += n
}

// TotalLines returns the authoritative count of ingested lines.
func (s *Store) TotalLines() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalLines
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// CompressedSize returns the sum of all stored chunk byte lengths.
func (s *Store) CompressedSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compressed
}

// ChunkLines returns the decompressed line count of the chunk at index
// without decompressing it. Out-of-bounds indices return 0.
func (s *Store) ChunkLines(index int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.chunks) {
		return 0
	}
	return s.chunks[index].lines
}

// Reset discards all chunks and counters.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.totalLines = 0
	s.compressed = 0
}
