// Package logging installs the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Setup.
type Options struct {
	Level  slog.Level
	Format string // "json" or "text"
	File   string // rotated log file; empty writes to stdout only
}

// Setup builds a logger from opts and makes it the slog default.
// The returned closer releases the log file and is safe to call when File is empty.
func Setup(opts Options) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}
	logger := New(out, opts)
	slog.SetDefault(logger)
	return logger, closer
}

// New returns a logger writing to w in the configured format.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
