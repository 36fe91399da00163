// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal engine models into transport-friendly DTOs so
// the CLI and other consumers can render state without coupling to internal
// types.
//
// DTOs use camelCase JSON tags. Stage and status enums are exposed as their
// lowercase string forms. Timestamps use RFC3339.
package api
