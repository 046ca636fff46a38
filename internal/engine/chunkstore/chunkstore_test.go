package chunkstore

import (
	"fmt"
	"testing"

	"github.com/dshills/longview/internal/engine/codec"
)

func newStore() *Store {
	return New(codec.New(codec.WithLevel(codec.LevelFastest)))
}

func lines(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i)
	}
	return out
}

func TestReadChunkOutOfBounds(t *testing.T) {
	s := newStore()

	got, err := s.ReadChunk(0)
	if err != nil {
		t.Fatalf("ReadChunk(0) on empty store: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty chunk, got %d lines", len(got))
	}

	got, err = s.ReadChunk(-1)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadChunk(-1): expected empty, nil; got %v, %v", got, err)
	}

	if err := s.WriteChunk(0, lines("a", 10)); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	got, err = s.ReadChunk(5)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadChunk(5): expected empty, nil; got %v, %v", got, err)
	}
}

func TestWriteChunkAppendAndOverwrite(t *testing.T) {
	s := newStore()

	if err := s.WriteChunk(0, lines("first", 10)); err != nil {
		t.Fatalf("append chunk 0: %v", err)
	}
	if err := s.WriteChunk(1, lines("second", 5)); err != nil {
		t.Fatalf("append chunk 1: %v", err)
	}
	if s.Count() != 2 {
		t.Fatalf("expected 2 chunks, got %d", s.Count())
	}

	if err := s.WriteChunk(0, lines("rewritten", 12)); err != nil {
		t.Fatalf("overwrite chunk 0: %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("overwrite changed count to %d", s.Count())
	}

	got, err := s.ReadChunk(0)
	if err != nil {
		t.Fatalf("ReadChunk(0): %v", err)
	}
	if len(got) != 12 || got[0] != "rewritten 0" {
		t.Errorf("expected rewritten content, got %d lines starting %q", len(got), got[0])
	}
}

func TestWriteChunkGap(t *testing.T) {
	s := newStore()

	if err := s.WriteChunk(2, lines("x", 3)); err != ErrChunkGap {
		t.Errorf("expected ErrChunkGap, got %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("gap write mutated store: count %d", s.Count())
	}
}

func TestCommitAtomicOnGap(t *testing.T) {
	s := newStore()

	good, err := s.Stage(0, lines("good", 4))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	bad, err := s.Stage(5, lines("bad", 4))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	if err := s.Commit([]Staged{good, bad}, 8); err != ErrChunkGap {
		t.Fatalf("expected ErrChunkGap, got %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("failed commit installed %d chunks", s.Count())
	}
	if s.TotalLines() != 0 {
		t.Errorf("failed commit advanced totalLines to %d", s.TotalLines())
	}
}

func TestCommitBatch(t *testing.T) {
	s := newStore()

	var batch []Staged
	for i := 0; i < 3; i++ {
		st, err := s.Stage(i, lines("chunk", 100))
		if err != nil {
			t.Fatalf("Stage(%d): %v", i, err)
		}
		batch = append(batch, st)
	}

	if err := s.Commit(batch, 300); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if s.Count() != 3 {
		t.Errorf("expected 3 chunks, got %d", s.Count())
	}
	if s.TotalLines() != 300 {
		t.Errorf("expected 300 total lines, got %d", s.TotalLines())
	}
	if s.ChunkLines(1) != 100 {
		t.Errorf("expected 100 lines in chunk 1, got %d", s.ChunkLines(1))
	}
}

func TestCompressedSize(t *testing.T) {
	s := newStore()

	if s.CompressedSize() != 0 {
		t.Fatalf("empty store size %d", s.CompressedSize())
	}

	if err := s.WriteChunk(0, lines("content", 1000)); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	first := s.CompressedSize()
	if first <= 0 {
		t.Fatalf("expected positive compressed size, got %d", first)
	}

	// Overwriting with smaller content must replace, not accumulate.
	if err := s.WriteChunk(0, lines("tiny", 1)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if s.CompressedSize() >= first {
		t.Errorf("overwrite did not shrink size: %d -> %d", first, s.CompressedSize())
	}
}

func TestReset(t *testing.T) {
	s := newStore()

	if err := s.WriteChunk(0, lines("a", 10)); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	s.AddLines(10)

	s.Reset()

	if s.Count() != 0 || s.TotalLines() != 0 || s.CompressedSize() != 0 {
		t.Errorf("reset left state: count=%d lines=%d size=%d",
			s.Count(), s.TotalLines(), s.CompressedSize())
	}
}
