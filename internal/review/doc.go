// Package review drives the per-mentor delivery of submissions.
//
// Each mentor sees at most one submission at a time. The queue itself is
// implicit: ordering lives in the submissions table, and the only state this
// package maintains is the mentor's active slot, claimed and released with
// compare-and-swap semantics so concurrent deliveries cannot double-book a
// mentor.
//
// Delivery is a notification hand-off. When the notifier fails, the slot is
// released and the submission stays queued; Retry pushes it again.
package review
