// Package policy defines the per-group configuration snapshot the engine
// consumes and the advisory deadline arithmetic derived from it.
//
// Policies are stored per group and read through the Source interface; the
// engine never mutates them. Stage hours of zero suppress the deadline for
// that stage kind.
package policy
