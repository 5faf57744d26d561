// Package logging wraps log/slog with the console and JSON handlers used by
// the reelsync daemon and CLI, plus typed attribute helpers and the
// standardized field keys shared across components.
package logging
