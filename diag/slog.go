//go:build !rp2040 && !rp2350

package diag

import (
	"io"
	"log/slog"
)

// Log writes info records through slog. Levels below Info are dropped.
type Log struct {
	l *slog.Logger
}

// NewLog builds a Log over w. format is "json" or "text".
func NewLog(w io.Writer, format string) *Log {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Log{l: slog.New(h).With(slog.String("category", Category))}
}

func (l *Log) Info(msg string) { l.l.Info(msg) }
