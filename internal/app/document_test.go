package app

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	application, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(application.Shutdown)
	return application
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestStreamFileIngestsWholeLines(t *testing.T) {
	content := "one\ntwo\nthree\n"
	application := newTestApp(t, Options{File: writeDoc(t, content)})

	lines, partial, err := application.streamFile(int64(len(content)), false)
	if err != nil {
		t.Fatalf("streamFile: %v", err)
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
	if partial != nil {
		t.Errorf("expected no partial, got %q", partial)
	}

	src := application.Session().Normal()
	if src.LineCount() != 3 || src.Line(2) != "three" {
		t.Errorf("expected 3 stored lines ending in %q, got %d ending in %q",
			"three", src.LineCount(), src.Line(src.LineCount()-1))
	}
}

func TestStreamFileWithholdsUnterminatedTail(t *testing.T) {
	content := "one\ntwo\nabc"
	application := newTestApp(t, Options{File: writeDoc(t, content), Follow: true})

	lines, partial, err := application.streamFile(int64(len(content)), true)
	if err != nil {
		t.Fatalf("streamFile: %v", err)
	}
	if lines != 2 {
		t.Errorf("expected 2 complete lines, got %d", lines)
	}
	if string(partial) != "abc" {
		t.Errorf("expected withheld partial %q, got %q", "abc", partial)
	}
	if got := application.Session().Normal().LineCount(); got != 2 {
		t.Errorf("expected 2 stored lines, got %d", got)
	}
}

func TestStreamFileKeepsUnterminatedTailWithoutFollow(t *testing.T) {
	content := "one\ntwo\nabc"
	application := newTestApp(t, Options{File: writeDoc(t, content)})

	lines, partial, err := application.streamFile(int64(len(content)), false)
	if err != nil {
		t.Fatalf("streamFile: %v", err)
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
	if partial != nil {
		t.Errorf("expected no partial without follow, got %q", partial)
	}
	if got := application.Session().Normal().Line(2); got != "abc" {
		t.Errorf("expected final line %q, got %q", "abc", got)
	}
}

func TestStreamFileTerminatedTailNotWithheld(t *testing.T) {
	content := "one\ntwo\n"
	application := newTestApp(t, Options{File: writeDoc(t, content), Follow: true})

	lines, partial, err := application.streamFile(int64(len(content)), true)
	if err != nil {
		t.Fatalf("streamFile: %v", err)
	}
	if lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}
	if partial != nil {
		t.Errorf("expected no partial for newline-terminated prefix, got %q", partial)
	}
}
