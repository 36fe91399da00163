// Package engine wires the progression rules together: task issuance from
// the curriculum cursor, submission intake with optional AI pre-screening,
// verdict application, and the hand-off to the mentor review queue.
//
// The engine itself is stateless; every operation reads and writes through
// the store, whose transactions carry the consistency guarantees. Operations
// return sentinel-tagged errors from errors.go so transport layers can map
// them to status codes without string matching.
package engine
