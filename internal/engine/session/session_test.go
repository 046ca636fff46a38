package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dshills/longview/internal/event"
)

func numbered(start, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %d", start+i)
	}
	return out
}

func TestActivateDefaults(t *testing.T) {
	s := New()

	if err := s.Activate(0); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if s.ChunkSize() != DefaultChunkSize {
		t.Errorf("expected default chunk size %d, got %d", DefaultChunkSize, s.ChunkSize())
	}
	if !s.Active() {
		t.Error("expected active session")
	}
	if s.ID() == "" {
		t.Error("expected session ID")
	}
}

func TestActivateViewportGuard(t *testing.T) {
	s := New(WithViewportLines(func() int { return 10 }))

	if err := s.Activate(100); err != nil {
		t.Fatalf("seed activate: %v", err)
	}
	if err := s.AppendLines(numbered(0, 42)); err != nil {
		t.Fatalf("seed append: %v", err)
	}
	id := s.ID()

	// A chunk size the viewport does not fit in must fail before any
	// state mutation: the prior session stays intact.
	if err := s.Activate(5); err != ErrViewportTooLarge {
		t.Fatalf("expected ErrViewportTooLarge, got %v", err)
	}
	if !s.Active() {
		t.Error("failed activation deactivated the session")
	}
	if s.ID() != id {
		t.Error("failed activation replaced the session")
	}
	if s.TotalLines() != 42 {
		t.Errorf("failed activation reset totalLines to %d", s.TotalLines())
	}

	// Equality is also rejected: the bound is strict.
	if err := s.Activate(10); err != ErrViewportTooLarge {
		t.Errorf("expected ErrViewportTooLarge at equality, got %v", err)
	}
}

func TestAppendRequiresActivation(t *testing.T) {
	s := New()

	if err := s.AppendLines(numbered(0, 3)); err != ErrNotActivated {
		t.Errorf("expected ErrNotActivated, got %v", err)
	}

	if err := s.Activate(100); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.AppendLines(numbered(0, 3)); err != nil {
		t.Errorf("append after activation: %v", err)
	}

	s.Deactivate()
	if err := s.AppendLines(numbered(3, 3)); err != ErrNotActivated {
		t.Errorf("expected ErrNotActivated after deactivate, got %v", err)
	}
}

func TestObservability(t *testing.T) {
	s := New()
	if err := s.Activate(100); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if err := s.AppendLines(numbered(0, 250)); err != nil {
		t.Fatalf("AppendLines: %v", err)
	}

	if s.TotalLines() != 250 {
		t.Errorf("expected 250 total lines, got %d", s.TotalLines())
	}
	if s.ChunkCount() != 3 {
		t.Errorf("expected 3 chunks, got %d", s.ChunkCount())
	}
	if s.CompressedSize() <= 0 {
		t.Errorf("expected positive compressed size, got %d", s.CompressedSize())
	}
}

func TestClearKeepsMode(t *testing.T) {
	s := New()
	if err := s.Activate(100); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.AppendLines(numbered(0, 10)); err != nil {
		t.Fatalf("AppendLines: %v", err)
	}

	s.Clear()

	if !s.Active() {
		t.Error("clear must not leave chunked mode")
	}
	if s.TotalLines() != 0 || s.ChunkCount() != 0 || s.CompressedSize() != 0 {
		t.Errorf("clear left state: lines=%d chunks=%d size=%d",
			s.TotalLines(), s.ChunkCount(), s.CompressedSize())
	}

	// Still usable for a fresh load.
	if err := s.AppendLines(numbered(0, 5)); err != nil {
		t.Errorf("append after clear: %v", err)
	}
	if s.TotalLines() != 5 {
		t.Errorf("expected 5 lines after reload, got %d", s.TotalLines())
	}
}

func TestDeactivateDiscards(t *testing.T) {
	s := New()
	if err := s.Activate(100); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.AppendLines(numbered(0, 10)); err != nil {
		t.Fatalf("AppendLines: %v", err)
	}

	s.Deactivate()

	if s.Active() {
		t.Error("expected inactive session")
	}
	if s.TotalLines() != 0 || s.ChunkCount() != 0 {
		t.Error("deactivate left chunked state visible")
	}
	if s.ID() != "" {
		t.Error("deactivate kept the session ID")
	}

	// Deactivating again still succeeds.
	s.Deactivate()
}

func TestSourceSwap(t *testing.T) {
	s := New()
	s.Normal().Append([]string{"small doc"})

	src := s.Source()
	if src.ReadOnly() {
		t.Error("expected writable normal source before activation")
	}
	if got := src.Resolve(0, 1); got[0] != "small doc" {
		t.Errorf("normal source: expected %q, got %q", "small doc", got[0])
	}

	if err := s.Activate(100); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	src = s.Source()
	if !src.ReadOnly() {
		t.Error("expected read-only chunked source during session")
	}
	if src.LineCount() != 0 {
		t.Errorf("chunked source line count: expected 0, got %d", src.LineCount())
	}

	s.Deactivate()
	src = s.Source()
	if src.ReadOnly() {
		t.Error("expected normal source restored after deactivation")
	}
	if src.LineCount() != 1 {
		t.Errorf("normal source survived session: expected 1 line, got %d", src.LineCount())
	}
}

func TestResolveThroughChunkedSource(t *testing.T) {
	bus := event.NewBus()
	bus.Start()
	defer bus.Stop(context.Background())

	loaded := make(chan event.Event, 4)
	if _, err := bus.SubscribeFunc(event.TopicWindowLoaded, func(e event.Event) { loaded <- e }); err != nil {
		t.Fatalf("SubscribeFunc: %v", err)
	}

	s := New(WithBus(bus))
	if err := s.Activate(100); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.AppendLines(numbered(0, 250)); err != nil {
		t.Fatalf("AppendLines: %v", err)
	}

	src := s.Source()

	// First resolve misses and returns placeholders; the repaint
	// notification arrives on the bus.
	got := src.Resolve(120, 5)
	if got[0] != "" {
		t.Errorf("expected placeholder, got %q", got[0])
	}

	select {
	case <-loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for window.loaded")
	}

	got = src.Resolve(120, 5)
	for i := range got {
		want := fmt.Sprintf("line %d", 120+i)
		if got[i] != want {
			t.Errorf("position %d: expected %q, got %q", 120+i, want, got[i])
		}
	}
}
