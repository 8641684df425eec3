// Package chanlog provides structured logging for one analyzer instance
// using the standard library's log/slog. Unlike a global-default logger,
// each analyzer owns its own *Logger so that many analyzers (one per
// symbol, per the concurrency model) never clobber each other's handler
// or fields.
package chanlog

import (
	"log/slog"
	"os"
)

// Logger wraps an slog.Logger scoped to one analyzer instance and hands
// out component-scoped children for the bi/seg/zs/bsp layers.
type Logger struct {
	base *slog.Logger
}

// New creates a Logger that writes JSON records to w (os.Stdout if nil),
// tagged with the given symbol and level.
func New(symbol string, level slog.Level, w *os.File) *Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	base := slog.New(handler).With(slog.String("symbol", symbol))
	return &Logger{base: base}
}

// NewDiscard returns a Logger that drops every record; useful in tests and
// for callers who have not configured output.
func NewDiscard() *Logger {
	handler := slog.NewJSONHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return &Logger{base: slog.New(handler)}
}

// Component returns a child logger tagged with the given layer name, e.g.
// "candle", "bi", "seg", "seg2", "zs", "bsp".
func (l *Logger) Component(name string) *slog.Logger {
	return l.base.With(slog.String("component", name))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
