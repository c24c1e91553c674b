// Package slogx holds the shared slog setup: level parsing, the default
// stderr handler, and a channel-backed writer for worker fan-in logging.
package slogx

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel converts debug|info|warn|error to a slog.Level. Unknown levels
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewDefault creates a text logger on stderr at the given level string.
func NewDefault(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ChanWriter buffers writes and sends complete lines to a channel. Fetch
// workers log through it so their output is serialized by one consumer
// instead of interleaving on stderr. When the channel is full, lines drop.
type ChanWriter struct {
	Ch  chan<- string
	buf []byte
}

func (w *ChanWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]
		select {
		case w.Ch <- line:
		default:
		}
	}
	return len(p), nil
}

// NewChanLogger creates a text-format logger whose lines go to ch.
func NewChanLogger(ch chan<- string) *slog.Logger {
	return slog.New(slog.NewTextHandler(&ChanWriter{Ch: ch}, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
