// Package logging assembles structured slog loggers and attribute helpers
// used across ComicAlive components.
//
// It centralizes level and output plumbing and exposes context-aware helpers
// so stage code automatically tags log lines with run IDs, stages, and region
// identifiers. The package also provides a no-op logger for tests.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
