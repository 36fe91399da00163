package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"murajaah/internal/curriculum"
)

// GetProgress fetches the cursor for a student/group pair. Returns (nil, nil)
// when the student has no cursor yet.
func (s *Store) GetProgress(ctx context.Context, studentID, groupID string) (*Progress, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT student_id, group_id, current_page, current_line, current_stage, updated_at
         FROM progress WHERE student_id = ? AND group_id = ?`,
		studentID, groupID,
	)
	progress, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

// EnsureProgress returns the cursor for a student/group pair, creating the
// page-one starting position when the student is new.
func (s *Store) EnsureProgress(ctx context.Context, studentID, groupID string) (*Progress, error) {
	existing, err := s.GetProgress(ctx, studentID, groupID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	_, err = s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO progress (student_id, group_id, current_page, current_line, current_stage, updated_at)
         VALUES (?, ?, 1, 1, ?, ?)`,
		studentID, groupID, string(curriculum.FirstStage), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("seed progress: %w", err)
	}
	return s.GetProgress(ctx, studentID, groupID)
}

// SetProgress overwrites the cursor. Intended for administrative repositioning;
// normal advancement happens inside ApplyVerdict.
func (s *Store) SetProgress(ctx context.Context, progress *Progress) error {
	if progress == nil {
		return errors.New("progress is nil")
	}
	now := time.Now().UTC()
	_, err := s.execWithRetry(ctx,
		`INSERT INTO progress (student_id, group_id, current_page, current_line, current_stage, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (student_id, group_id) DO UPDATE SET
            current_page = excluded.current_page,
            current_line = excluded.current_line,
            current_stage = excluded.current_stage,
            updated_at = excluded.updated_at`,
		progress.StudentID, progress.GroupID,
		progress.CurrentPage, progress.CurrentLine, string(progress.CurrentStage),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

func loadProgressTx(ctx context.Context, tx *sql.Tx, studentID, groupID string) (*Progress, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT student_id, group_id, current_page, current_line, current_stage, updated_at
         FROM progress WHERE student_id = ? AND group_id = ?`,
		studentID, groupID,
	)
	progress, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return progress, nil
}

func insertProgressTx(ctx context.Context, tx *sql.Tx, progress *Progress, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO progress (student_id, group_id, current_page, current_line, current_stage, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		progress.StudentID, progress.GroupID,
		progress.CurrentPage, progress.CurrentLine, string(progress.CurrentStage),
		formatTime(now),
	); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

func scanProgress(sc scanner) (*Progress, error) {
	var (
		studentID  string
		groupID    string
		page       int
		line       int
		stageStr   string
		updatedRaw string
	)
	if err := sc.Scan(&studentID, &groupID, &page, &line, &stageStr, &updatedRaw); err != nil {
		return nil, err
	}
	progress := &Progress{
		StudentID:    studentID,
		GroupID:      groupID,
		CurrentPage:  page,
		CurrentLine:  line,
		CurrentStage: curriculum.Stage(stageStr),
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		progress.UpdatedAt = updated
	}
	return progress, nil
}
