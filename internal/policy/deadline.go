package policy

import (
	"time"

	"murajaah/internal/curriculum"
)

// Deadline computes the advisory expiry timestamp for a task opened now.
// Returns nil when the policy suppresses deadlines for the stage kind.
func Deadline(p *GroupPolicy, stage curriculum.Stage, now time.Time) *time.Time {
	hours := p.Hours(stage.Kind())
	if hours <= 0 {
		return nil
	}
	deadline := now.Add(time.Duration(hours * float64(time.Hour))).UTC()
	return &deadline
}

// Remaining reports the time left before a deadline, clamped to zero. The
// engine never acts on expiry; this is display-only.
func Remaining(deadline *time.Time, now time.Time) time.Duration {
	if deadline == nil {
		return 0
	}
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Elapsed reports how long a task has been open.
func Elapsed(createdAt, now time.Time) time.Duration {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
