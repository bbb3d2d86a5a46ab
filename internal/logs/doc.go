// Package logs provides file tailing helpers shared by the CLI and the
// daemon's IPC log endpoint.
//
// It reads log files with bounded memory usage, supports negative offsets
// for "tail last N lines" operations, and powers follow-mode updates for
// `bindery logs --follow`. Callers supply context deadlines so background
// polling shuts down cleanly when the CLI exits.
package logs
