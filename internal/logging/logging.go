// Package logging configures the process-wide structured logger. Log
// records go to an append-only text file so a batch run leaves a
// trace that can be inspected after the fact, optionally echoed to
// stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options controls where log records go.
type Options struct {
	// Path is the log file. Its directory is created when missing and
	// the file is appended to, never truncated. Empty disables file
	// logging.
	Path string

	// Echo duplicates records to stderr.
	Echo bool

	// Debug lowers the level from Info to Debug.
	Debug bool
}

// Setup builds a text logger for the given options and installs it as
// the slog default. The returned close function releases the log
// file.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	var writers []io.Writer
	closer := func() error { return nil }

	if opts.Path != "" {
		if dir := filepath.Dir(opts.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}

		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
		closer = file.Close
	}

	if opts.Echo {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return logger, closer, nil
}

// DefaultPath is the log file next to the default config file in the
// user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kaisetsu.log"
	}
	return filepath.Join(home, ".kaisetsu.log")
}
