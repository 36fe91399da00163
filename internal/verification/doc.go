// Package verification decides what happens to a submission before a mentor
// sees it.
//
// The Decide function maps a group's verification mode and an optional AI
// score onto one of three outcomes: settle as passed, settle as failed, or
// queue for mentor review. Manual and semi-automatic groups always queue;
// the score is advisory. Fully automatic groups settle scores outside the
// uncertainty band and queue the rest.
//
// The Scorer abstraction wraps the external recitation scoring service. A
// scorer failure never blocks intake; callers degrade to manual review.
package verification
