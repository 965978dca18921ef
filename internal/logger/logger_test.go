// ABOUTME: Tests for logger initialization and level parsing
// ABOUTME: Verifies the debug log file is created with the chosen format

package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_WritesJSONFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	dir := filepath.Join(t.TempDir(), "cfg")
	l, closeFn, err := Init(Options{Level: "debug", Format: "json", Dir: dir})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	l.Debug("hello", "k", "v")
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q", data)
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestInit_LevelFilters(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	dir := t.TempDir()
	l, closeFn, err := Init(Options{Level: "warn", Dir: dir})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	l.Info("quiet")
	l.Warn("loud")
	closeFn()

	data, _ := os.ReadFile(filepath.Join(dir, FileName))
	if strings.Contains(string(data), "quiet") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(string(data), "loud") {
		t.Error("warn should be logged")
	}
}

func TestInit_NoDirDiscards(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	l, closeFn, err := Init(Options{})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer closeFn()
	l.Info("dropped")
}
