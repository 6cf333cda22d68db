// Package logging builds the CLI's slog logger: a colored console handler on
// stderr and an optional rotating JSON log file, both with secrets redacted.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fivetwenty-io/retell-client/internal/constants"
)

// Redacted replaces the value of sensitive attributes.
const Redacted = "[REDACTED]"

// Options controls logger creation.
type Options struct {
	// Verbose lowers the console level to debug. The default is warn.
	Verbose bool
	// NoColor disables ANSI colors on the console.
	NoColor bool
	// File enables a rotating JSON log file at debug level.
	File string
	// Console receives console output. Defaults to os.Stderr.
	Console io.Writer
}

// Logger is a slog.Logger that may own a log file.
type Logger struct {
	*slog.Logger

	closer io.Closer
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}

	return l.closer.Close()
}

var sensitiveKeys = []string{"api_key", "authorization", "token", "secret"}

// New creates a logger from opts.
func New(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleLevel := slog.LevelWarn
	if opts.Verbose {
		consoleLevel = slog.LevelDebug
	}

	handlers := []slog.Handler{
		NewRedactingHandler(tint.NewHandler(console, &tint.Options{
			Level:      consoleLevel,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}), sensitiveKeys),
	}

	logger := &Logger{}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    constants.LogMaxSizeMB,
			MaxBackups: constants.LogMaxBackups,
			MaxAge:     constants.LogMaxAgeDays,
			Compress:   true,
		}
		logger.closer = file

		handlers = append(handlers, NewRedactingHandler(
			slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}),
			sensitiveKeys,
		))
	}

	if len(handlers) == 1 {
		logger.Logger = slog.New(handlers[0])
	} else {
		logger.Logger = slog.New(NewMultiHandler(handlers...))
	}

	return logger
}

// RedactingHandler masks attributes whose key names a secret, and string
// values carrying a bearer token.
type RedactingHandler struct {
	inner slog.Handler
	keys  map[string]struct{}
}

// NewRedactingHandler wraps inner, redacting the given attribute keys.
func NewRedactingHandler(inner slog.Handler, sensitive []string) *RedactingHandler {
	keys := make(map[string]struct{}, len(sensitive))
	for _, key := range sensitive {
		keys[strings.ToLower(key)] = struct{}{}
	}

	return &RedactingHandler{inner: inner, keys: keys}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	sanitized := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	var attrs []slog.Attr

	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)

		return true
	})
	sanitized.AddAttrs(h.sanitize(attrs...)...)

	return h.inner.Handle(ctx, sanitized)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithAttrs(h.sanitize(attrs...)), keys: h.keys}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name), keys: h.keys}
}

func (h *RedactingHandler) sanitize(attrs ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, attr := range attrs {
		if _, ok := h.keys[strings.ToLower(attr.Key)]; ok {
			out = append(out, slog.String(attr.Key, Redacted))

			continue
		}

		if attr.Value.Kind() == slog.KindGroup {
			out = append(out, slog.Attr{Key: attr.Key, Value: slog.GroupValue(h.sanitize(attr.Value.Group()...)...)})

			continue
		}

		if text, ok := attr.Value.Any().(string); ok && strings.Contains(strings.ToLower(text), "bearer ") {
			out = append(out, slog.String(attr.Key, Redacted))

			continue
		}

		out = append(out, attr)
	}

	return out
}

// MultiHandler fans records out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler combines handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (h *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			errs = append(errs, handler.Handle(ctx, record.Clone()))
		}
	}

	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}

	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}

	return &MultiHandler{handlers: handlers}
}
