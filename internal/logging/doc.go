// Package logging assembles structured slog loggers and formatting helpers used
// across dit.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can tag log
// lines with job IDs, stages, and correlation IDs. A bounded StreamHub keeps
// recent events in memory for the daemon's log endpoint, and a no-op logger
// serves tests and wiring code that cannot fail.
package logging
