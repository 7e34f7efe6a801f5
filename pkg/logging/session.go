// Package logging provides the conversion session log: every line goes to the
// console and is appended to a log file that lives for the whole run.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Session owns the log file handle and the logger writing to it.
type Session struct {
	f      *os.File
	Logger zerolog.Logger
}

// Open opens (or creates) path in append mode and returns a session logging to
// both console and the file. A nil console defaults to stdout.
func Open(path string, console io.Writer) (*Session, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	return &Session{f: f, Logger: New(console, f)}, nil
}

// New builds a logger with a human console sink and an optional JSON file sink.
func New(console io.Writer, file io.Writer) zerolog.Logger {
	if console == nil {
		console = os.Stdout
	}
	cw := zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
	var w io.Writer = cw
	if file != nil {
		w = zerolog.MultiLevelWriter(cw, file)
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Write logs msg as a plain info line. Empty messages are dropped.
func (s *Session) Write(msg string) {
	if msg == "" {
		return
	}
	s.Logger.Info().Msg(msg)
}

// Close flushes and closes the log file.
func (s *Session) Close() error {
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
