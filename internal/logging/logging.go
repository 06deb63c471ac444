// Package logging builds the [log.Logger] used across coverglow.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w with timestamps and caller info.
// The writer defaults to [os.Stderr].
func New(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})
	l.SetLevel(level)
	return l
}

// Open returns a logger appending to path, creating parent directories.
// The alternate screen owns stdout while the widget runs, so the widget logs
// to a file. An empty path discards everything.
func Open(path string, level log.Level) (*log.Logger, io.Closer, error) {
	if path == "" {
		return New(io.Discard, level), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return New(f, level), f, nil
}

// ParseLevel maps a config string onto a [log.Level], defaulting to info.
func ParseLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
