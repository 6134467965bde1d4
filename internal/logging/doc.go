// Package logging assembles structured slog loggers and formatting helpers used
// across drawdiff.
//
// It owns the configurable console/JSON handlers, rotates file outputs, and
// exposes context-aware helpers so comparison runs can tag log lines with
// their run ID and file slot. The package also provides a no-op logger for
// tests and library code that is used without a configured logger.
package logging
