// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
)

// New builds a slog.Logger that renders through pterm's structured logger.
// level: "debug", "info", "warn", "error" (defaults to "info").
func New(level string, w io.Writer) *slog.Logger {
	pl := pterm.DefaultLogger.
		WithLevel(ParseLevel(level)).
		WithWriter(w)
	return slog.New(pterm.NewSlogHandler(pl))
}

// ParseLevel maps a config level name onto pterm's log levels.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
