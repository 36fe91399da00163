package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClaimMentorSlot attempts to make submissionID the mentor's active item via
// a compare-and-swap against an idle slot. Returns false when the mentor is
// already showing something.
func (s *Store) ClaimMentorSlot(ctx context.Context, mentorID string, submissionID int64) (bool, error) {
	now := formatTime(time.Now().UTC())
	if _, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO mentor_state (mentor_id, active_submission_id, updated_at) VALUES (?, NULL, ?)`,
		mentorID, now,
	); err != nil {
		return false, fmt.Errorf("seed mentor state: %w", err)
	}

	res, err := s.execWithRetry(ctx,
		`UPDATE mentor_state SET active_submission_id = ?, updated_at = ?
         WHERE mentor_id = ? AND (active_submission_id IS NULL OR active_submission_id = ?)`,
		submissionID, now, mentorID, submissionID,
	)
	if err != nil {
		return false, fmt.Errorf("claim mentor slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReleaseMentorSlot clears the mentor's active item if it still is
// submissionID. Returns false when someone else already replaced it.
func (s *Store) ReleaseMentorSlot(ctx context.Context, mentorID string, submissionID int64) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE mentor_state SET active_submission_id = NULL, updated_at = ?
         WHERE mentor_id = ? AND active_submission_id = ?`,
		formatTime(time.Now().UTC()), mentorID, submissionID,
	)
	if err != nil {
		return false, fmt.Errorf("release mentor slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ActiveSubmission returns the identifier currently shown to a mentor, or nil
// when the mentor is idle.
func (s *Store) ActiveSubmission(ctx context.Context, mentorID string) (*int64, error) {
	var active sql.NullInt64
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT active_submission_id FROM mentor_state WHERE mentor_id = ?`, mentorID,
	).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active submission: %w", err)
	}
	if !active.Valid {
		return nil, nil
	}
	id := active.Int64
	return &id, nil
}

// NextEligibleSubmission returns the oldest pending, review-queued submission
// across the mentor's groups, or nil when the queue is empty. The queue is
// implicit: it is this query, not a stored list.
func (s *Store) NextEligibleSubmission(ctx context.Context, mentorID string) (*Submission, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT s.id, s.task_id, s.external_id, s.status, s.ai_score, s.transcript,
                s.queued_for_review, s.delivery_attempts, s.last_delivery_error,
                s.delivered_at, s.created_at, s.reviewed_at
         FROM submissions s
         JOIN tasks t ON t.id = s.task_id
         JOIN group_policies gp ON gp.group_id = t.group_id
         WHERE gp.mentor_id = ? AND s.status = ? AND s.queued_for_review = 1
         ORDER BY s.created_at, s.id LIMIT 1`,
		mentorID, string(SubmissionPending),
	)
	submission, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next eligible submission: %w", err)
	}
	return submission, nil
}

// ReviewQueueDepth counts pending, review-queued submissions across the
// mentor's groups.
func (s *Store) ReviewQueueDepth(ctx context.Context, mentorID string) (int, error) {
	var depth int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1)
         FROM submissions s
         JOIN tasks t ON t.id = s.task_id
         JOIN group_policies gp ON gp.group_id = t.group_id
         WHERE gp.mentor_id = ? AND s.status = ? AND s.queued_for_review = 1`,
		mentorID, string(SubmissionPending),
	).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("review queue depth: %w", err)
	}
	return depth, nil
}
