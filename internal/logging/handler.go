// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package logging builds the slog loggers used by plughost. Records carry the
// service name, the build version, and the active trace and span ids.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
)

// Output formats accepted by Setup.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// spanHandler adds trace_id and span_id from the record's context.
type spanHandler struct {
	slog.Handler
}

// Handle implements slog.Handler.
func (h spanHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h spanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return spanHandler{h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h spanHandler) WithGroup(name string) slog.Handler {
	return spanHandler{h.Handler.WithGroup(name)}
}

// ParseLevel maps a config level name to a slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, oops.Code("LOG_LEVEL_INVALID").With("level", name).Errorf("unknown log level %q", name)
	}
}

// ValidFormat reports whether format is one Setup understands.
func ValidFormat(format string) bool {
	return format == FormatJSON || format == FormatText
}

// Setup creates a logger writing to w (os.Stderr when nil). format is
// FormatText or FormatJSON; anything else means JSON. A nil level means info.
func Setup(service, version, format string, level slog.Leveler, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if level == nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if format == FormatText {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	return slog.New(spanHandler{base}).With(
		slog.String("service", service),
		slog.String("version", version),
	)
}

// SetDefault installs a Setup logger as slog's default and returns it.
func SetDefault(service, version, format string, level slog.Leveler, w io.Writer) *slog.Logger {
	logger := Setup(service, version, format, level, w)
	slog.SetDefault(logger)
	return logger
}
