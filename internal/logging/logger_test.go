// ABOUTME: Tests for logger construction and level parsing.
// ABOUTME: Verifies level filtering and structured key/value output.

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "child", "abc123")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "child=abc123") {
		t.Errorf("expected warn with key/value, got %q", out)
	}
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "chatty")

	logger.Debug("debug line")
	logger.Info("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Error("expected debug to be filtered at default level")
	}
	if !strings.Contains(out, "info line") {
		t.Error("expected info to be logged at default level")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("expected a logger")
	}
	OrDiscard(nil).Error("dropped")
}
