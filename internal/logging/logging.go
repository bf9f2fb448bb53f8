// Package logging builds the leveled pterm logger shared by the catalog,
// graph engine and web server.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// New returns a logger writing to w at the named level ("trace", "debug",
// "info", "warn", "error" or "off"). Unknown names mean "info". A nil writer
// means stderr.
func New(level string, w io.Writer) *pterm.Logger {
	if w == nil {
		w = os.Stderr
	}
	return pterm.DefaultLogger.
		WithWriter(w).
		WithLevel(ParseLevel(level))
}

// JSON returns a logger that writes one JSON object per line.
func JSON(level string, w io.Writer) *pterm.Logger {
	return New(level, w).WithFormatter(pterm.LogFormatterJSON)
}

// Discard returns a logger that drops everything.
func Discard() *pterm.Logger {
	return New("off", io.Discard)
}

// ParseLevel maps a level name to a pterm level.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(level) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
