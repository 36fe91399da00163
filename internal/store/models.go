package store

import (
	"strings"
	"time"

	"murajaah/internal/curriculum"
)

// TaskStatus represents the lifecycle of a task.
type TaskStatus string

const (
	TaskInProgress TaskStatus = "in_progress"
	TaskPassed     TaskStatus = "passed"
)

// SubmissionStatus represents the lifecycle of a submission.
type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "pending"
	SubmissionPassed  SubmissionStatus = "passed"
	SubmissionFailed  SubmissionStatus = "failed"
)

// ParseSubmissionStatus converts a string into a known SubmissionStatus.
func ParseSubmissionStatus(value string) (SubmissionStatus, bool) {
	normalized := SubmissionStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case SubmissionPending, SubmissionPassed, SubmissionFailed:
		return normalized, true
	}
	return "", false
}

// Task is one assigned unit of work: a line range on a page at a stage, with
// a repetition target.
type Task struct {
	ID            int64
	StudentID     string
	GroupID       string
	PageNumber    int
	PageLines     int
	StartLine     int
	EndLine       int
	Stage         curriculum.Stage
	RequiredCount int
	PassedCount   int
	FailedCount   int
	// PendingCount is derived from the submissions table on load; it is not
	// a stored column.
	PendingCount int
	Status       TaskStatus
	Deadline     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// Complete reports whether the task has met its repetition target. Failed
// attempts never gate completion; only passes count.
func (t *Task) Complete() bool {
	return t.PassedCount >= t.RequiredCount
}

// OpenSlots reports how many more submissions the task can absorb before the
// target is reachable without overshooting.
func (t *Task) OpenSlots() int {
	slots := t.RequiredCount - t.PassedCount - t.PendingCount
	if slots < 0 {
		return 0
	}
	return slots
}

// Submission is one graded attempt against a task.
type Submission struct {
	ID         int64
	TaskID     int64
	ExternalID string
	Status     SubmissionStatus
	AIScore    *int
	Transcript string
	// QueuedForReview marks the submission eligible for mentor delivery. It
	// flips on explicit confirm or when the next submission supersedes it.
	QueuedForReview   bool
	DeliveryAttempts  int
	LastDeliveryError string
	DeliveredAt       *time.Time
	CreatedAt         time.Time
	ReviewedAt        *time.Time
}

// Terminal reports whether the submission has received its verdict.
func (s *Submission) Terminal() bool {
	return s.Status != SubmissionPending
}

// Progress is the per-student, per-group curriculum cursor. It is mutated
// only by the advancement path after a task passes.
type Progress struct {
	StudentID    string
	GroupID      string
	CurrentPage  int
	CurrentLine  int
	CurrentStage curriculum.Stage
	UpdatedAt    time.Time
}

// MentorState tracks the single submission currently shown to a mentor.
// A nil ActiveSubmissionID means the mentor is idle.
type MentorState struct {
	MentorID           string
	ActiveSubmissionID *int64
	UpdatedAt          time.Time
}

// Advancement describes where the cursor moves after a task passes.
type Advancement struct {
	Page       int
	Line       int
	Stage      curriculum.Stage
	PageTurned bool
}

// VerdictResult reports the outcome of applying a verdict atomically.
type VerdictResult struct {
	Submission    *Submission
	Task          *Task
	TaskCompleted bool
	Advanced      *Advancement
}

// HealthSummary describes aggregated engine state for diagnostics.
type HealthSummary struct {
	OpenTasks          int
	CompletedTasks     int
	PendingSubmissions int
	QueuedForReview    int
	Students           int
}
