// Package curriculum encodes the fixed per-page memorization curriculum.
//
// It holds the stage transition tables (five stages on a standard page, two
// on a short page), the line batching policy that sizes assignments by group
// level, and the page shape lookup for the reference text. Everything here is
// a pure function of its inputs; persistence and counters live elsewhere.
package curriculum
