// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errutil holds error logging, panic recovery and test helpers
// shared by the host packages.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string. Extra attrs are appended
// after the error fields.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	logger.Error(msg, append(errorAttrs(err), attrs...)...)
}

// LogWarn is LogError at warning level, for failures the caller recovers from.
func LogWarn(logger *slog.Logger, msg string, err error, attrs ...any) {
	logger.Warn(msg, append(errorAttrs(err), attrs...)...)
}

func errorAttrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil && code != "" {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}
