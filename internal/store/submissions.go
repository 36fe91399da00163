package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const submissionColumns = `id, task_id, external_id, status, ai_score, transcript,
    queued_for_review, delivery_attempts, last_delivery_error, delivered_at, created_at, reviewed_at`

// IntakeResult reports the outcome of an atomic submission intake.
type IntakeResult struct {
	Submission *Submission
	// Released is the previously unconfirmed pending submission that the new
	// arrival implicitly confirmed for mentor review, if any.
	Released *Submission
	// Existing is true when the external identifier matched an earlier intake
	// and no new submission was created.
	Existing bool
}

// IntakeSubmission atomically creates a pending submission for a task.
//
// The call is idempotent per external identifier: replays return the original
// submission untouched. When the task already holds an unconfirmed pending
// submission, that submission is released for mentor review in the same
// transaction, mirroring the "confirm by next recording" interaction.
// Returns ErrTaskNotFound or ErrTaskFull for the corresponding conflicts.
func (s *Store) IntakeSubmission(ctx context.Context, taskID int64, externalID string) (*IntakeResult, error) {
	result := &IntakeResult{}
	var newID, releasedID, existingID int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		newID, releasedID, existingID = 0, 0, 0

		var requiredCount, passedCount int
		var statusStr string
		err := tx.QueryRowContext(ctx,
			`SELECT required_count, passed_count, status FROM tasks WHERE id = ?`, taskID,
		).Scan(&requiredCount, &passedCount, &statusStr)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("load task: %w", err)
		}

		if externalID != "" {
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM submissions WHERE task_id = ? AND external_id = ?`, taskID, externalID,
			).Scan(&existingID)
			if err == nil {
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("check external id: %w", err)
			}
		}

		var pendingCount int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM submissions WHERE task_id = ? AND status = ?`, taskID, string(SubmissionPending),
		).Scan(&pendingCount)
		if err != nil {
			return fmt.Errorf("count pending: %w", err)
		}
		if passedCount+pendingCount >= requiredCount {
			return ErrTaskFull
		}

		// Release the latest unconfirmed pending submission, if any.
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM submissions
             WHERE task_id = ? AND status = ? AND queued_for_review = 0
             ORDER BY created_at DESC, id DESC LIMIT 1`,
			taskID, string(SubmissionPending),
		).Scan(&releasedID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("find unconfirmed pending: %w", err)
		}
		if releasedID != 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE submissions SET queued_for_review = 1 WHERE id = ?`, releasedID,
			); err != nil {
				return fmt.Errorf("release pending: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO submissions (task_id, external_id, status, created_at) VALUES (?, ?, ?, ?)`,
			taskID,
			nullableString(externalID),
			string(SubmissionPending),
			formatTime(time.Now().UTC()),
		)
		if err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		newID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if existingID != 0 {
		existing, err := s.GetSubmission(ctx, existingID)
		if err != nil {
			return nil, err
		}
		result.Submission = existing
		result.Existing = true
		return result, nil
	}

	created, err := s.GetSubmission(ctx, newID)
	if err != nil {
		return nil, err
	}
	result.Submission = created
	if releasedID != 0 {
		released, err := s.GetSubmission(ctx, releasedID)
		if err != nil {
			return nil, err
		}
		result.Released = released
	}
	return result, nil
}

// GetSubmission fetches a submission by identifier. Returns (nil, nil) when absent.
func (s *Store) GetSubmission(ctx context.Context, id int64) (*Submission, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	submission, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return submission, nil
}

// ListSubmissions returns every submission for a task, oldest first.
func (s *Store) ListSubmissions(ctx context.Context, taskID int64) ([]*Submission, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+submissionColumns+` FROM submissions WHERE task_id = ? ORDER BY created_at, id`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, rows.Err()
}

// CancelLastPending deletes the most recent pending submission for a task and
// returns it. Returns ErrNothingPending when the task has no pending submission.
func (s *Store) CancelLastPending(ctx context.Context, taskID int64) (*Submission, error) {
	var cancelled *Submission
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+submissionColumns+` FROM submissions
             WHERE task_id = ? AND status = ?
             ORDER BY created_at DESC, id DESC LIMIT 1`,
			taskID, string(SubmissionPending),
		)
		submission, err := scanSubmission(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNothingPending
		}
		if err != nil {
			return fmt.Errorf("find pending: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, submission.ID); err != nil {
			return fmt.Errorf("delete submission: %w", err)
		}
		cancelled = submission
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// MarkQueuedForReview flags a pending submission as eligible for mentor
// delivery. Returns true when the flag flipped, false when it was already
// set. Terminal submissions return ErrAlreadyReviewed.
func (s *Store) MarkQueuedForReview(ctx context.Context, id int64) (bool, error) {
	submission, err := s.GetSubmission(ctx, id)
	if err != nil {
		return false, err
	}
	if submission == nil {
		return false, ErrSubmissionNotFound
	}
	if submission.Terminal() {
		return false, ErrAlreadyReviewed
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE submissions SET queued_for_review = 1
         WHERE id = ? AND status = ? AND queued_for_review = 0`,
		id, string(SubmissionPending),
	)
	if err != nil {
		return false, fmt.Errorf("mark queued: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetSubmissionScore attaches the scorer result to a submission.
func (s *Store) SetSubmissionScore(ctx context.Context, id int64, score int, transcript string) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE submissions SET ai_score = ?, transcript = ? WHERE id = ?`,
		score, nullableString(transcript), id,
	)
	if err != nil {
		return fmt.Errorf("set score: %w", err)
	}
	return nil
}

// RecordDeliveryAttempt tracks a failed delivery for diagnostics and retry.
func (s *Store) RecordDeliveryAttempt(ctx context.Context, id int64, deliveryErr string) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE submissions
         SET delivery_attempts = delivery_attempts + 1, last_delivery_error = ?
         WHERE id = ?`,
		nullableString(deliveryErr), id,
	)
	if err != nil {
		return fmt.Errorf("record delivery attempt: %w", err)
	}
	return nil
}

// MarkDelivered stamps a successful hand-off to the mentor.
func (s *Store) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE submissions
         SET delivery_attempts = delivery_attempts + 1, last_delivery_error = NULL, delivered_at = ?
         WHERE id = ?`,
		formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}

func scanSubmission(sc scanner) (*Submission, error) {
	var (
		id              int64
		taskID          int64
		externalID      sql.NullString
		statusStr       string
		aiScore         sql.NullInt64
		transcript      sql.NullString
		queuedForReview sql.NullInt64
		attempts        int
		lastError       sql.NullString
		deliveredRaw    sql.NullString
		createdRaw      string
		reviewedRaw     sql.NullString
	)

	if err := sc.Scan(
		&id,
		&taskID,
		&externalID,
		&statusStr,
		&aiScore,
		&transcript,
		&queuedForReview,
		&attempts,
		&lastError,
		&deliveredRaw,
		&createdRaw,
		&reviewedRaw,
	); err != nil {
		return nil, err
	}

	submission := &Submission{
		ID:                id,
		TaskID:            taskID,
		ExternalID:        externalID.String,
		Status:            SubmissionStatus(statusStr),
		Transcript:        transcript.String,
		DeliveryAttempts:  attempts,
		LastDeliveryError: lastError.String,
		DeliveredAt:       timePtrFromNull(deliveredRaw),
		ReviewedAt:        timePtrFromNull(reviewedRaw),
	}
	if aiScore.Valid {
		score := int(aiScore.Int64)
		submission.AIScore = &score
	}
	if queuedForReview.Valid {
		submission.QueuedForReview = queuedForReview.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		submission.CreatedAt = created
	}
	return submission, nil
}
