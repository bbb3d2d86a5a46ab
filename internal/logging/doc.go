// Package logging provides slog-based structured logging for Bindery.
//
// Two formats are supported: a key=value console format for interactive
// use and JSON for machine consumption. Loggers carry standardized field
// names so item identifiers and sweep names stay consistent across
// components.
package logging
