package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf, Prefix: "test"})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("low-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("expected warn and error messages, got %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	logger.WithComponent("loader").WithField("lines", 42).Info("loaded")

	out := buf.String()
	if !strings.Contains(out, "component=loader") {
		t.Errorf("missing component field: %q", out)
	}
	if !strings.Contains(out, "lines=42") {
		t.Errorf("missing lines field: %q", out)
	}
}

func TestLoggerFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})

	logger.Info("loaded %d lines from %s", 10, "file.log")

	if !strings.Contains(buf.String(), "loaded 10 lines from file.log") {
		t.Errorf("format args not applied: %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"bogus", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestNullLogger(t *testing.T) {
	// Must not panic with no output writer.
	NullLogger.Info("dropped")
	NullLogger.Error("dropped")
}
