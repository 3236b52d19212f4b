// Package logger provides structured logging setup for docsmith.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/docsmith/docsmith/internal/config"
)

// New creates a *slog.Logger from the given Logging config. Output is JSON
// to stdout with a "service" attribute on every record. When cfg.Async is
// set, records are handled off the hot path; call Close on the returned
// Closer before process exit to flush them.
func New(cfg config.Logging) (*slog.Logger, Closer) {
	return NewTo(os.Stdout, cfg)
}

// NewTo is New with an explicit output writer. The MCP stdio transport
// uses it to keep stdout free for protocol traffic.
func NewTo(w io.Writer, cfg config.Logging) (*slog.Logger, Closer) {
	level := parseLevel(cfg.Level)

	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	closer := Closer(nopCloser{})
	if cfg.Async {
		async := NewAsyncHandler(handler, 4096)
		handler = async
		closer = async
	}

	return slog.New(handler).With("service", cfg.Service), closer
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
