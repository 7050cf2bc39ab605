// ABOUTME: Structured diagnostic logging built on log/slog with level and format options.
// ABOUTME: The TUI owns the terminal, so logs go to a file or are discarded.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options selects the logger's level, output format, and destination.
type Options struct {
	Level  string // debug, info, warn/warning, error; empty falls back to LOG_LEVEL
	Format string // text or json
	File   string // empty discards output unless Writer is set
	Writer io.Writer
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// New builds a logger. The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	var out io.Writer = io.Discard
	var closer io.Closer = nopCloser{}
	switch {
	case opts.Writer != nil:
		out = opts.Writer
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		h = slog.NewTextHandler(out, handlerOpts)
	case "json":
		h = slog.NewJSONHandler(out, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return slog.New(h), closer, nil
}

// Scope tags a log line with the subsystem that emitted it.
func Scope(name string) slog.Attr {
	return slog.String("scope", name)
}

// Err attaches an error under the "error" key.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
