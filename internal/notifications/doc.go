// Package notifications delivers engine events via pluggable notifiers.
//
// The default implementation publishes to ntfy, one topic per recipient
// derived from the configured prefix, and gracefully degrades to a no-op when
// no base URL is configured. Enumerated event types cover the review and
// progression milestones so engine code can emit consistent messages without
// duplicating HTTP glue.
//
// Mentor delivery treats a send failure as meaningful: the review queue keeps
// the submission and retries later. Student-facing events are best-effort.
//
// Extend this package if you need alternative transports; all engine code
// depends only on the simple Service interface.
package notifications
