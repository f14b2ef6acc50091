// Package log wraps log/slog with a component field and a request-scoped
// logger carried in the context.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger and stamps every record with its component.
type Logger struct {
	*slog.Logger
	component string
	handler   slog.Handler
	attrs     []any
}

type Config struct {
	Level     slog.Level
	Component string
	Output    io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Output:    os.Stdout,
	}
}

// New builds a text-handler logger and installs it as the slog default.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level})
	slog.SetDefault(slog.New(handler))
	return build(handler, cfg.Component, nil)
}

func build(handler slog.Handler, component string, attrs []any) *Logger {
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component).With(attrs...),
		component: component,
		handler:   handler,
		attrs:     attrs,
	}
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) With(args ...any) *Logger {
	attrs := append(append([]any(nil), l.attrs...), args...)
	return build(l.handler, l.component, attrs)
}

// WithComponent returns a logger for another component keeping the
// attributes added so far.
func (l *Logger) WithComponent(component string) *Logger {
	return build(l.handler, component, l.attrs)
}

func (l *Logger) Component() string {
	return l.component
}

type contextKey struct{}

// IntoContext returns a context carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request logger, or one built on slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return build(slog.Default().Handler(), "unknown", nil)
}
