package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// Configure initializes the shared JSON logger writing to stdout. It is
// safe to call multiple times.
func Configure() *slog.Logger {
	return ConfigureOutput(os.Stdout)
}

// ConfigureOutput initializes the shared JSON logger writing to w. Only
// the first call (whether to Configure, ConfigureOutput, or Logger)
// takes effect; callers that want a non-stdout destination must call
// this before anything else touches the logger.
func ConfigureOutput(w io.Writer) *slog.Logger {
	once.Do(func() {
		handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
		logger = slog.New(handler)
	})
	return logger
}

// Logger returns the configured slog logger, configuring it on first use if necessary.
func Logger() *slog.Logger {
	if logger == nil {
		return Configure()
	}
	return logger
}
