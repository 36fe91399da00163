// Package logs provides log file tailing helpers shared by the CLI.
//
// It reads the daemon's log file with bounded memory usage, supports
// "last N lines" reads, and powers follow-mode updates for `murajaah logs
// --follow`. Callers supply context cancellation so background polling shuts
// down cleanly when the CLI exits.
package logs
