package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"murajaah/internal/curriculum"
	"murajaah/internal/logging"
	"murajaah/internal/notifications"
	"murajaah/internal/policy"
	"murajaah/internal/review"
	"murajaah/internal/store"
	"murajaah/internal/verification"
)

// Engine coordinates the progression lifecycle on top of the store.
type Engine struct {
	store    *store.Store
	policies policy.Source
	scorer   verification.Scorer
	reviews  *review.Queue
	notifier notifications.Service
	logger   *slog.Logger
}

// New constructs an engine. The scorer may be nil when AI scoring is
// disabled; every other dependency is required.
func New(
	st *store.Store,
	policies policy.Source,
	scorer verification.Scorer,
	reviews *review.Queue,
	notifier notifications.Service,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:    st,
		policies: policies,
		scorer:   scorer,
		reviews:  reviews,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "engine"),
	}
}

// OpenTask returns the task at the student's current cursor position,
// creating it when none is open. The call is idempotent: repeated opens at
// the same position return the same task.
func (e *Engine) OpenTask(ctx context.Context, studentID, groupID string) (*store.Task, error) {
	studentID = strings.TrimSpace(studentID)
	groupID = strings.TrimSpace(groupID)
	if studentID == "" || groupID == "" {
		return nil, Wrap(ErrValidation, "open task", "student and group required", nil)
	}

	pol, err := e.policyFor(ctx, groupID)
	if err != nil {
		return nil, err
	}

	progress, err := e.store.EnsureProgress(ctx, studentID, groupID)
	if err != nil {
		return nil, err
	}

	pageLines := curriculum.PageLines(progress.CurrentPage)
	stage := curriculum.EffectiveStage(progress.CurrentStage, pageLines)
	batch, err := curriculum.NextBatch(stage, pageLines, pol.Level, progress.CurrentLine)
	if err != nil {
		return nil, Wrap(ErrValidation, "open task", "compute batch", err)
	}

	existing, err := e.store.FindOpenTask(ctx, studentID, groupID, stage, batch.Start)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	task, err := e.store.CreateTask(ctx, &store.Task{
		StudentID:     studentID,
		GroupID:       groupID,
		PageNumber:    progress.CurrentPage,
		PageLines:     pageLines,
		StartLine:     batch.Start,
		EndLine:       batch.End,
		Stage:         stage,
		RequiredCount: pol.RequiredCount(stage.Kind()),
		Deadline:      policy.Deadline(pol, stage, time.Now().UTC()),
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("task opened",
		logging.Int64(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldStudentID, studentID),
		logging.String(logging.FieldStage, string(stage)),
		logging.Int("start_line", batch.Start),
		logging.Int("end_line", batch.End),
	)
	return task, nil
}

// SubmitResult reports the outcome of a submission intake.
type SubmitResult struct {
	Submission *store.Submission
	// Existing is true when the external identifier matched an earlier intake.
	Existing bool
	// Decision is the pre-review outcome for the new submission.
	Decision verification.Decision
	// Verdict is non-nil when the decision settled the submission immediately.
	Verdict *store.VerdictResult
}

// Submit records a new attempt against a task. The external identifier makes
// the call idempotent; when empty a fresh one is generated. Submitting while
// an earlier attempt is still unconfirmed confirms that attempt and hands it
// to the mentor queue.
func (e *Engine) Submit(ctx context.Context, taskID int64, externalID string) (*SubmitResult, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, Wrap(ErrNotFound, "submit", fmt.Sprintf("task %d", taskID), nil)
	}
	if task.Status == store.TaskPassed {
		return nil, Wrap(ErrConflict, "submit", "task already complete", nil)
	}

	pol, err := e.policyFor(ctx, task.GroupID)
	if err != nil {
		return nil, err
	}

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		externalID = uuid.NewString()
	}

	intake, err := e.store.IntakeSubmission(ctx, taskID, externalID)
	if errors.Is(err, store.ErrTaskFull) {
		return nil, Wrap(ErrConflict, "submit", "no open submission slot", err)
	}
	if errors.Is(err, store.ErrTaskNotFound) {
		return nil, Wrap(ErrNotFound, "submit", fmt.Sprintf("task %d", taskID), err)
	}
	if err != nil {
		return nil, err
	}
	if intake.Existing {
		return &SubmitResult{Submission: intake.Submission, Existing: true}, nil
	}

	if intake.Released != nil {
		if _, err := e.reviews.Enqueue(ctx, intake.Released.ID); err != nil {
			// Delivery failure never blocks intake; the attempt is recorded
			// and the submission stays queued.
			e.logger.Warn("superseded submission delivery failed",
				logging.Int64(logging.FieldSubmissionID, intake.Released.ID),
				logging.Error(err),
			)
		}
	}

	submission := intake.Submission
	score := e.maybeScore(ctx, pol, task, submission, externalID)

	result := &SubmitResult{Submission: submission}
	result.Decision = verification.Decide(pol.Mode, score, pol.AcceptThreshold, pol.RejectThreshold)
	switch result.Decision {
	case verification.DecisionAccept:
		result.Verdict, err = e.settle(ctx, task, submission.ID, store.SubmissionPassed)
	case verification.DecisionReject:
		result.Verdict, err = e.settle(ctx, task, submission.ID, store.SubmissionFailed)
	}
	if err != nil {
		return nil, err
	}
	if result.Verdict != nil {
		result.Submission = result.Verdict.Submission
	}
	return result, nil
}

// maybeScore runs AI scoring when the policy and stage allow it. A scorer
// failure degrades to manual review.
func (e *Engine) maybeScore(ctx context.Context, pol *policy.GroupPolicy, task *store.Task, submission *store.Submission, externalID string) *int {
	if e.scorer == nil || !pol.AIEnabled || task.Stage.Kind() != curriculum.KindLearning {
		return nil
	}
	result, err := e.scorer.Score(ctx, externalID, "")
	if err != nil {
		e.logger.Warn("scoring failed, degrading to manual review",
			logging.Int64(logging.FieldSubmissionID, submission.ID),
			logging.Error(err),
		)
		return nil
	}
	if err := e.store.SetSubmissionScore(ctx, submission.ID, result.Score, result.Transcript); err != nil {
		e.logger.Warn("persist score failed",
			logging.Int64(logging.FieldSubmissionID, submission.ID),
			logging.Error(err),
		)
		return nil
	}
	submission.AIScore = &result.Score
	submission.Transcript = result.Transcript
	return &result.Score
}

// Confirm explicitly releases a pending submission for mentor review.
// Returns true when it reached the mentor immediately.
func (e *Engine) Confirm(ctx context.Context, submissionID int64) (bool, error) {
	delivered, err := e.reviews.Enqueue(ctx, submissionID)
	switch {
	case errors.Is(err, store.ErrSubmissionNotFound):
		return false, Wrap(ErrNotFound, "confirm", fmt.Sprintf("submission %d", submissionID), err)
	case errors.Is(err, store.ErrAlreadyReviewed):
		return false, Wrap(ErrConflict, "confirm", "submission already reviewed", err)
	case errors.Is(err, review.ErrDeliveryFailed):
		return false, Wrap(ErrDelivery, "confirm", "mentor notification failed", err)
	case err != nil:
		return false, err
	}
	return delivered, nil
}

// VerdictOutcome reports the full consequence of a mentor verdict.
type VerdictOutcome struct {
	Result *store.VerdictResult
	// Next is the submission now in front of the mentor, nil when the queue
	// drained or delivery failed.
	Next *store.Submission
}

// RecordVerdict settles a pending submission with a mentor's judgement and
// advances the mentor's queue. When mentorID is empty the queue step is
// skipped, which serves administrative corrections.
func (e *Engine) RecordVerdict(ctx context.Context, mentorID string, submissionID int64, passed bool) (*VerdictOutcome, error) {
	submission, err := e.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, Wrap(ErrNotFound, "verdict", fmt.Sprintf("submission %d", submissionID), nil)
	}
	task, err := e.store.GetTask(ctx, submission.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, Wrap(ErrNotFound, "verdict", fmt.Sprintf("task %d", submission.TaskID), nil)
	}

	verdict := store.SubmissionFailed
	if passed {
		verdict = store.SubmissionPassed
	}
	result, err := e.settle(ctx, task, submissionID, verdict)
	if err != nil {
		return nil, err
	}

	outcome := &VerdictOutcome{Result: result}
	if mentorID = strings.TrimSpace(mentorID); mentorID != "" {
		next, err := e.reviews.OnVerdict(ctx, mentorID, submissionID)
		if err != nil && !errors.Is(err, review.ErrDeliveryFailed) {
			return nil, err
		}
		outcome.Next = next
	}
	return outcome, nil
}

// settle applies a terminal verdict and emits the student-facing
// notifications. Best-effort sends; a notification failure never unwinds a
// recorded verdict.
func (e *Engine) settle(ctx context.Context, task *store.Task, submissionID int64, verdict store.SubmissionStatus) (*store.VerdictResult, error) {
	result, err := e.store.ApplyVerdict(ctx, submissionID, verdict, nextAdvancement)
	if errors.Is(err, store.ErrAlreadyReviewed) {
		return nil, Wrap(ErrConflict, "verdict", "submission already reviewed", err)
	}
	if errors.Is(err, store.ErrSubmissionNotFound) {
		return nil, Wrap(ErrNotFound, "verdict", fmt.Sprintf("submission %d", submissionID), err)
	}
	if err != nil {
		return nil, err
	}

	label := review.TaskLabel(result.Task)
	passed := verdict == store.SubmissionPassed
	if err := e.notifier.NotifyVerdict(ctx, task.StudentID, label, passed); err != nil {
		e.logger.Warn("verdict notification failed", logging.Error(err))
	}
	if result.TaskCompleted {
		e.logger.Info("task complete",
			logging.Int64(logging.FieldTaskID, result.Task.ID),
			logging.String(logging.FieldStudentID, task.StudentID),
			logging.String(logging.FieldStage, string(result.Task.Stage)),
		)
		if err := e.notifier.NotifyTaskPassed(ctx, task.StudentID, label); err != nil {
			e.logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	if adv := result.Advanced; adv != nil {
		position := fmt.Sprintf("page %d line %d (%s)", adv.Page, adv.Line, adv.Stage)
		if err := e.notifier.NotifyStageAdvanced(ctx, task.StudentID, adv.Page, position); err != nil {
			e.logger.Warn("advancement notification failed", logging.Error(err))
		}
	}
	return result, nil
}

// Cancel withdraws the most recent pending submission on a task, the undo
// for an accidental recording. If the cancelled submission was in front of a
// mentor, the slot is released and the queue refilled.
func (e *Engine) Cancel(ctx context.Context, taskID int64) (*store.Submission, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, Wrap(ErrNotFound, "cancel", fmt.Sprintf("task %d", taskID), nil)
	}

	cancelled, err := e.store.CancelLastPending(ctx, taskID)
	if errors.Is(err, store.ErrNothingPending) {
		return nil, Wrap(ErrConflict, "cancel", "no pending submission", err)
	}
	if err != nil {
		return nil, err
	}

	pol, err := e.store.GetGroupPolicy(ctx, task.GroupID)
	if err != nil {
		return nil, err
	}
	if pol != nil {
		active, err := e.store.ActiveSubmission(ctx, pol.MentorID)
		if err != nil {
			return nil, err
		}
		if active != nil && *active == cancelled.ID {
			if _, err := e.store.ReleaseMentorSlot(ctx, pol.MentorID, cancelled.ID); err != nil {
				return nil, err
			}
			if _, err := e.reviews.Retry(ctx, pol.MentorID); err != nil && !errors.Is(err, review.ErrDeliveryFailed) {
				return nil, err
			}
		}
	}
	return cancelled, nil
}

// Progress returns the student's cursor, seeding the starting position for
// new students.
func (e *Engine) Progress(ctx context.Context, studentID, groupID string) (*store.Progress, error) {
	studentID = strings.TrimSpace(studentID)
	groupID = strings.TrimSpace(groupID)
	if studentID == "" || groupID == "" {
		return nil, Wrap(ErrValidation, "progress", "student and group required", nil)
	}
	return e.store.EnsureProgress(ctx, studentID, groupID)
}

func (e *Engine) policyFor(ctx context.Context, groupID string) (*policy.GroupPolicy, error) {
	pol, err := e.policies.PolicyFor(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if pol == nil {
		return nil, Wrap(ErrPolicyNotConfigured, "policy", fmt.Sprintf("group %s", groupID), nil)
	}
	return pol, nil
}

// nextAdvancement computes where the cursor moves after a task passes. A nil
// return leaves the cursor untouched, which covers stale tasks that no longer
// match the cursor position.
func nextAdvancement(task *store.Task, progress *store.Progress) *store.Advancement {
	if progress.CurrentPage != task.PageNumber {
		return nil
	}
	pageLines := task.PageLines
	stage := curriculum.EffectiveStage(progress.CurrentStage, pageLines)
	if stage != task.Stage {
		return nil
	}

	if stage.Kind() == curriculum.KindLearning {
		if progress.CurrentLine != task.StartLine {
			return nil
		}
		_, end := curriculum.StageRange(stage, pageLines)
		if task.EndLine < end {
			return &store.Advancement{Page: task.PageNumber, Line: task.EndLine + 1, Stage: stage}
		}
	}

	next, pageDone := curriculum.NextStage(stage, pageLines)
	if pageDone {
		return &store.Advancement{
			Page:       task.PageNumber + 1,
			Line:       1,
			Stage:      curriculum.FirstStage,
			PageTurned: true,
		}
	}
	return &store.Advancement{
		Page:  task.PageNumber,
		Line:  curriculum.StartLine(next, pageLines),
		Stage: next,
	}
}
