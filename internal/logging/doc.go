// Package logging provides structured logging helpers built on log/slog.
//
// It defines the attribute keys used consistently across the codebase and
// convenience constructors for common attributes (operation, account, error).
// Token contents are never logged; use SanitizeToken when a token must be
// referenced in a log line.
package logging
