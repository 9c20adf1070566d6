package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// contextKey is used for context keys to avoid collisions.
type contextKey string

const (
	// ContextKeyLogger is the context key for the logger instance.
	ContextKeyLogger contextKey = "logger"
)

// Logger wraps slog.Logger with compiler-specific functionality.
type Logger struct {
	logger *slog.Logger
	noop   bool
}

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Output is where logs are written (default: os.Stdout).
	Output io.Writer
	// Pretty enables human-readable text output (default: false for JSON).
	Pretty bool
	// IncludeCaller includes source location in logs (default: false).
	IncludeCaller bool
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		Output:        os.Stdout,
		Pretty:        false,
		IncludeCaller: false,
	}
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Pretty {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// NoOp returns a logger that discards everything it is given. Library callers
// who never configure a logger get this for free and pay no formatting cost:
// every method on it short-circuits before touching slog.
func NoOp() *Logger {
	return &Logger{noop: true}
}

func parseLevel(level string) slog.Level {
	switch level {
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

// WithContext adds the logger to a context.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, l)
}

// FromContext retrieves the logger from context, or returns a no-op logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ContextKeyLogger).(*Logger); ok {
		return logger
	}
	return NoOp()
}

// WithCompileID adds compile_id to the logger context.
func (l *Logger) WithCompileID(compileID string) *Logger {
	if l.noop {
		return l
	}
	return &Logger{logger: l.logger.With(slog.String("compile_id", compileID))}
}

// WithField adds a custom field to the logger context.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	if l.noop {
		return l
	}
	return &Logger{logger: l.logger.With(slog.Any(key, value))}
}

// WithError adds an error to the logger context.
func (l *Logger) WithError(err error) *Logger {
	if l.noop {
		return l
	}
	return &Logger{logger: l.logger.With(slog.Any("error", err))}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	if l.noop {
		return
	}
	l.logger.Debug(msg)
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.noop {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Info logs an info message.
func (l *Logger) Info(msg string) {
	if l.noop {
		return
	}
	l.logger.Info(msg)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.noop {
		return
	}
	l.logger.Info(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	if l.noop {
		return
	}
	l.logger.Warn(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string) {
	if l.noop {
		return
	}
	l.logger.Error(msg)
}

// GetSlogLogger returns the underlying slog.Logger, or nil for a no-op logger.
func (l *Logger) GetSlogLogger() *slog.Logger {
	if l.noop {
		return nil
	}
	return l.logger
}
