package follow

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// collector records appended lines.
type collector struct {
	mu    sync.Mutex
	lines []string
	grown chan struct{}
}

func newCollector() *collector {
	return &collector{grown: make(chan struct{}, 16)}
}

func (c *collector) AppendLines(lines []string) error {
	c.mu.Lock()
	c.lines = append(c.lines, lines...)
	c.mu.Unlock()
	select {
	case c.grown <- struct{}{}:
	default:
	}
	return nil
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// waitFor polls until the collector holds want lines.
func waitFor(t *testing.T, c *collector, want int) []string {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		if got := c.snapshot(); len(got) >= want {
			return got
		}
		select {
		case <-c.grown:
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %d lines, have %d", want, len(c.snapshot()))
		}
	}
}

func writeAppend(t *testing.T, path, s string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := file.WriteString(s); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestFollowAppendsNewLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("old line\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c := newCollector()
	f, err := New(path, c, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop()

	writeAppend(t, path, "first\nsecond\n")

	got := waitFor(t, c, 2)
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("expected [first second], got %v", got)
	}

	// Lines before Start must not replay.
	for _, line := range got {
		if line == "old line" {
			t.Error("follower replayed pre-existing content")
		}
	}
}

func TestFollowHoldsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c := newCollector()
	f, err := New(path, c, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop()

	writeAppend(t, path, "complete\npart")
	got := waitFor(t, c, 1)
	if len(got) != 1 || got[0] != "complete" {
		t.Fatalf("expected only the complete line, got %v", got)
	}

	// The held fragment joins its continuation.
	writeAppend(t, path, "ial\n")
	got = waitFor(t, c, 2)
	if got[1] != "partial" {
		t.Errorf("expected reassembled %q, got %q", "partial", got[1])
	}
}

func TestFollowSeededPartialJoinsContinuation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	// The loader consumed "abc" as an unterminated line and hands it
	// over instead of ingesting it.
	c := newCollector()
	f, err := New(path, c,
		WithDebounce(20*time.Millisecond),
		WithStartOffset(3),
		WithPartial([]byte("abc")),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop()

	writeAppend(t, path, "def\nnext\n")

	got := waitFor(t, c, 2)
	if got[0] != "abcdef" {
		t.Errorf("expected joined line %q, got %q", "abcdef", got[0])
	}
	if got[1] != "next" {
		t.Errorf("expected %q, got %q", "next", got[1])
	}
}

func TestFollowReplayFromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c := newCollector()
	f, err := New(path, c, WithDebounce(20*time.Millisecond), WithStartOffset(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop()

	writeAppend(t, path, "three\n")

	got := waitFor(t, c, 3)
	if got[0] != "one" || got[2] != "three" {
		t.Errorf("expected full replay, got %v", got)
	}
}

func TestFollowStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	f, err := New(path, newCollector())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	f.Stop()
	f.Stop()

	if err := f.Start(); err != ErrFollowerClosed {
		t.Errorf("expected ErrFollowerClosed after Stop, got %v", err)
	}
}
