package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/verilab/harnessctl/internal/errors"
)

// Config holds configuration for the logger
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Output is where logs should be written
	Output io.Writer
}

// DefaultConfig logs at INFO level, human-readable, to stderr. Workload
// stdout/stderr is streamed directly by the runner, so logs stay on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Logger provides structured logging with slog
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	handler := slog.NewTextHandler(config.Output, &slog.HandlerOptions{
		Level: config.Level.ToSlogLevel(),
	})
	return &Logger{
		slog:   slog.New(handler),
		config: config,
	}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		config: l.config,
	}
}

// WithError adds error details to the logger.
// If the error is a HarnessError, its code is included as a separate attribute.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	if code := errors.CodeOf(err); code != "" {
		return l.With("error", err.Error(), "error_code", string(code))
	}
	return l.With("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}
