package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ApplyVerdict settles a pending submission and applies every consequence in
// one transaction: the counter increment, completion detection, and, when the
// task completes, the cursor advancement computed by the advance callback.
//
// The status update is conditional on the submission still being pending, so
// racing verdicts lose cleanly with ErrAlreadyReviewed instead of
// double-counting. The advance callback receives the task with fresh counters
// and the current cursor; returning nil leaves the cursor untouched.
func (s *Store) ApplyVerdict(
	ctx context.Context,
	submissionID int64,
	verdict SubmissionStatus,
	advance func(task *Task, progress *Progress) *Advancement,
) (*VerdictResult, error) {
	if verdict != SubmissionPassed && verdict != SubmissionFailed {
		return nil, fmt.Errorf("apply verdict: status %q is not terminal", verdict)
	}

	result := &VerdictResult{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result.Submission, result.Task, result.TaskCompleted, result.Advanced = nil, nil, false, nil

		row := tx.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, submissionID)
		submission, err := scanSubmission(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubmissionNotFound
		}
		if err != nil {
			return fmt.Errorf("load submission: %w", err)
		}
		if submission.Terminal() {
			return ErrAlreadyReviewed
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`UPDATE submissions SET status = ?, reviewed_at = ? WHERE id = ? AND status = ?`,
			string(verdict), formatTime(now), submissionID, string(SubmissionPending),
		)
		if err != nil {
			return fmt.Errorf("settle submission: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return ErrAlreadyReviewed
		}
		submission.Status = verdict
		submission.ReviewedAt = &now

		counter := "failed_count"
		if verdict == SubmissionPassed {
			counter = "passed_count"
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET `+counter+` = `+counter+` + 1, updated_at = ? WHERE id = ?`,
			formatTime(now), submission.TaskID,
		); err != nil {
			return fmt.Errorf("bump %s: %w", counter, err)
		}

		taskRow := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, submission.TaskID)
		task, err := scanTask(taskRow)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("reload task: %w", err)
		}

		result.Submission = submission
		result.Task = task

		if verdict != SubmissionPassed || !task.Complete() || task.Status == TaskPassed {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
			string(TaskPassed), formatTime(now), formatTime(now), task.ID,
		); err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		task.Status = TaskPassed
		task.CompletedAt = &now
		result.TaskCompleted = true

		if advance == nil {
			return nil
		}

		progress, err := loadProgressTx(ctx, tx, task.StudentID, task.GroupID)
		if err != nil {
			return err
		}
		if progress == nil {
			progress = &Progress{
				StudentID:    task.StudentID,
				GroupID:      task.GroupID,
				CurrentPage:  task.PageNumber,
				CurrentLine:  task.StartLine,
				CurrentStage: task.Stage,
			}
			if err := insertProgressTx(ctx, tx, progress, now); err != nil {
				return err
			}
		}

		adv := advance(task, progress)
		if adv == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE progress SET current_page = ?, current_line = ?, current_stage = ?, updated_at = ?
             WHERE student_id = ? AND group_id = ?`,
			adv.Page, adv.Line, string(adv.Stage), formatTime(now),
			task.StudentID, task.GroupID,
		); err != nil {
			return fmt.Errorf("advance progress: %w", err)
		}
		result.Advanced = adv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
