package api

import (
	"time"

	"murajaah/internal/policy"
	"murajaah/internal/review"
	"murajaah/internal/store"
)

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

// FromTask converts a store task into its transport form.
func FromTask(task *store.Task) Task {
	if task == nil {
		return Task{}
	}
	out := Task{
		ID:            task.ID,
		StudentID:     task.StudentID,
		GroupID:       task.GroupID,
		PageNumber:    task.PageNumber,
		PageLines:     task.PageLines,
		StartLine:     task.StartLine,
		EndLine:       task.EndLine,
		Stage:         string(task.Stage),
		RequiredCount: task.RequiredCount,
		PassedCount:   task.PassedCount,
		FailedCount:   task.FailedCount,
		PendingCount:  task.PendingCount,
		Status:        string(task.Status),
		Label:         review.TaskLabel(task),
		Deadline:      formatTime(task.Deadline),
		CompletedAt:   formatTime(task.CompletedAt),
	}
	if !task.CreatedAt.IsZero() {
		created := task.CreatedAt
		out.CreatedAt = formatTime(&created)
	}
	return out
}

// FromSubmission converts a store submission into its transport form.
func FromSubmission(submission *store.Submission) Submission {
	if submission == nil {
		return Submission{}
	}
	out := Submission{
		ID:                submission.ID,
		TaskID:            submission.TaskID,
		ExternalID:        submission.ExternalID,
		Status:            string(submission.Status),
		AIScore:           submission.AIScore,
		Transcript:        submission.Transcript,
		QueuedForReview:   submission.QueuedForReview,
		DeliveryAttempts:  submission.DeliveryAttempts,
		LastDeliveryError: submission.LastDeliveryError,
		DeliveredAt:       formatTime(submission.DeliveredAt),
		ReviewedAt:        formatTime(submission.ReviewedAt),
	}
	if !submission.CreatedAt.IsZero() {
		created := submission.CreatedAt
		out.CreatedAt = formatTime(&created)
	}
	return out
}

// FromProgress converts a cursor into its transport form.
func FromProgress(progress *store.Progress) Progress {
	if progress == nil {
		return Progress{}
	}
	out := Progress{
		StudentID:    progress.StudentID,
		GroupID:      progress.GroupID,
		CurrentPage:  progress.CurrentPage,
		CurrentLine:  progress.CurrentLine,
		CurrentStage: string(progress.CurrentStage),
	}
	if !progress.UpdatedAt.IsZero() {
		updated := progress.UpdatedAt
		out.UpdatedAt = formatTime(&updated)
	}
	return out
}

// FromPolicy converts a group policy into its transport form.
func FromPolicy(p *policy.GroupPolicy) Policy {
	if p == nil {
		return Policy{}
	}
	return Policy{
		GroupID:          p.GroupID,
		MentorID:         p.MentorID,
		Level:            p.Level,
		VerificationMode: string(p.Mode),
		AcceptThreshold:  p.AcceptThreshold,
		RejectThreshold:  p.RejectThreshold,
		AIEnabled:        p.AIEnabled,
		RequiredLearning: p.RequiredLearning,
		RequiredHalfPage: p.RequiredHalfPage,
		RequiredFullPage: p.RequiredFullPage,
		HoursLearning:    p.HoursLearning,
		HoursHalfPage:    p.HoursHalfPage,
		HoursFullPage:    p.HoursFullPage,
	}
}

// FromAdvancement renders an advancement as the resulting cursor position.
func FromAdvancement(adv *store.Advancement, studentID, groupID string) *Progress {
	if adv == nil {
		return nil
	}
	return &Progress{
		StudentID:    studentID,
		GroupID:      groupID,
		CurrentPage:  adv.Page,
		CurrentLine:  adv.Line,
		CurrentStage: string(adv.Stage),
	}
}
