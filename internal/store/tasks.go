package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"murajaah/internal/curriculum"
)

const taskColumns = `id, student_id, group_id, page_number, page_lines, start_line, end_line,
    stage, required_count, passed_count, failed_count,
    (SELECT COUNT(1) FROM submissions WHERE submissions.task_id = tasks.id AND submissions.status = 'pending') AS pending_count,
    status, deadline, created_at, updated_at, completed_at`

// CreateTask inserts a new task and returns the stored row.
func (s *Store) CreateTask(ctx context.Context, task *Task) (*Task, error) {
	if task == nil {
		return nil, errors.New("task is nil")
	}
	now := time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO tasks (
            student_id, group_id, page_number, page_lines, start_line, end_line,
            stage, required_count, passed_count, failed_count, status,
            deadline, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?)`,
		task.StudentID,
		task.GroupID,
		task.PageNumber,
		task.PageLines,
		task.StartLine,
		task.EndLine,
		string(task.Stage),
		task.RequiredCount,
		string(TaskInProgress),
		nullableTime(task.Deadline),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// GetTask fetches a task by identifier. Returns (nil, nil) when absent.
func (s *Store) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// FindOpenTask returns the in-progress task for the exact
// (student, group, stage, startLine) tuple, or nil when none exists.
func (s *Store) FindOpenTask(ctx context.Context, studentID, groupID string, stage curriculum.Stage, startLine int) (*Task, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+taskColumns+` FROM tasks
         WHERE student_id = ? AND group_id = ? AND stage = ? AND start_line = ? AND status = ?
         ORDER BY id LIMIT 1`,
		studentID, groupID, string(stage), startLine, string(TaskInProgress),
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open task: %w", err)
	}
	return task, nil
}

// ListTasks returns every task for a student/group pair, oldest first.
func (s *Store) ListTasks(ctx context.Context, studentID, groupID string) ([]*Task, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+taskColumns+` FROM tasks WHERE student_id = ? AND group_id = ? ORDER BY created_at, id`,
		studentID, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(sc scanner) (*Task, error) {
	var (
		id            int64
		studentID     string
		groupID       string
		pageNumber    int
		pageLines     int
		startLine     int
		endLine       int
		stageStr      string
		requiredCount int
		passedCount   int
		failedCount   int
		pendingCount  int
		statusStr     string
		deadlineRaw   sql.NullString
		createdRaw    string
		updatedRaw    string
		completedRaw  sql.NullString
	)

	if err := sc.Scan(
		&id,
		&studentID,
		&groupID,
		&pageNumber,
		&pageLines,
		&startLine,
		&endLine,
		&stageStr,
		&requiredCount,
		&passedCount,
		&failedCount,
		&pendingCount,
		&statusStr,
		&deadlineRaw,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	task := &Task{
		ID:            id,
		StudentID:     studentID,
		GroupID:       groupID,
		PageNumber:    pageNumber,
		PageLines:     pageLines,
		StartLine:     startLine,
		EndLine:       endLine,
		Stage:         curriculum.Stage(stageStr),
		RequiredCount: requiredCount,
		PassedCount:   passedCount,
		FailedCount:   failedCount,
		PendingCount:  pendingCount,
		Status:        TaskStatus(statusStr),
		Deadline:      timePtrFromNull(deadlineRaw),
		CompletedAt:   timePtrFromNull(completedRaw),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		task.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		task.UpdatedAt = updated
	}
	return task, nil
}
