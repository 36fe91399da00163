// Package logging builds the slog loggers used across the daemon and CLI.
//
// It supports console and JSON output, multi-destination writers (stdout plus
// the daemon log file), standardized field names for task/submission/mentor
// identifiers, and context carriage so request-scoped identifiers follow an
// operation through the engine.
package logging
