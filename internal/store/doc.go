// Package store persists progression state in SQLite and exposes helpers for
// driving the task and submission lifecycle.
//
// The Store manages database connections, schema initialization, group
// policies, mentor review slots, and the transactional operations that keep
// counters consistent: submission intake, verdict application, and cursor
// advancement run as single transactions so concurrent callers never observe
// a half-applied verdict.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
//
// Treat this package as the single source of truth for lifecycle semantics;
// when you add new statuses or columns, update schema.sql and bump
// schemaVersion.
package store
