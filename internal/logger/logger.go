// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Writes to a debug log file so the terminal stays free for the TUI.

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file created inside the config directory
const FileName = "debug.log"

// Options selects level, format and destination
type Options struct {
	Level  string // debug, info, warn, error (default: info)
	Format string // text, json (default: text)
	// Dir receives debug.log. Empty disables file logging.
	Dir string
	// Stderr logs to standard error instead of the file
	Stderr bool
}

// Init configures the default slog logger and returns it with a function
// that closes the log file.
func Init(opts Options) (*slog.Logger, func() error, error) {
	w, closeFn, err := destination(opts)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}

	var handler slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l, closeFn, nil
}

func destination(opts Options) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	if opts.Stderr {
		return os.Stderr, noop, nil
	}
	if opts.Dir == "" {
		return io.Discard, noop, nil
	}

	if err := os.MkdirAll(opts.Dir, 0700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(opts.Dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
