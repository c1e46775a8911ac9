// Package logging assembles structured slog loggers and formatting helpers used
// across worldshelf.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so scan, import, and lookup code tag
// log lines with the same keys (world_id, path, scan_id). The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
