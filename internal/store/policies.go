package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"murajaah/internal/policy"
)

// GetGroupPolicy fetches the stored policy for a group. Returns (nil, nil)
// when the group has no policy configured.
func (s *Store) GetGroupPolicy(ctx context.Context, groupID string) (*policy.GroupPolicy, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT group_id, mentor_id, level, verification_mode, accept_threshold, reject_threshold,
                ai_enabled, required_learning, required_half_page, required_full_page,
                hours_learning, hours_half_page, hours_full_page
         FROM group_policies WHERE group_id = ?`,
		groupID,
	)

	var (
		p         policy.GroupPolicy
		modeStr   string
		aiEnabled int
	)
	err := row.Scan(
		&p.GroupID,
		&p.MentorID,
		&p.Level,
		&modeStr,
		&p.AcceptThreshold,
		&p.RejectThreshold,
		&aiEnabled,
		&p.RequiredLearning,
		&p.RequiredHalfPage,
		&p.RequiredFullPage,
		&p.HoursLearning,
		&p.HoursHalfPage,
		&p.HoursFullPage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group policy: %w", err)
	}

	mode, ok := policy.ParseMode(modeStr)
	if !ok {
		return nil, fmt.Errorf("group %s: stored verification mode %q is unknown", groupID, modeStr)
	}
	p.Mode = mode
	p.AIEnabled = aiEnabled != 0
	return &p, nil
}

// UpsertGroupPolicy stores or replaces a group's policy.
func (s *Store) UpsertGroupPolicy(ctx context.Context, p *policy.GroupPolicy) error {
	if p == nil {
		return errors.New("policy is nil")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO group_policies (
            group_id, mentor_id, level, verification_mode, accept_threshold, reject_threshold,
            ai_enabled, required_learning, required_half_page, required_full_page,
            hours_learning, hours_half_page, hours_full_page, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (group_id) DO UPDATE SET
            mentor_id = excluded.mentor_id,
            level = excluded.level,
            verification_mode = excluded.verification_mode,
            accept_threshold = excluded.accept_threshold,
            reject_threshold = excluded.reject_threshold,
            ai_enabled = excluded.ai_enabled,
            required_learning = excluded.required_learning,
            required_half_page = excluded.required_half_page,
            required_full_page = excluded.required_full_page,
            hours_learning = excluded.hours_learning,
            hours_half_page = excluded.hours_half_page,
            hours_full_page = excluded.hours_full_page,
            updated_at = excluded.updated_at`,
		p.GroupID, p.MentorID, p.Level, string(p.Mode), p.AcceptThreshold, p.RejectThreshold,
		boolToInt(p.AIEnabled), p.RequiredLearning, p.RequiredHalfPage, p.RequiredFullPage,
		p.HoursLearning, p.HoursHalfPage, p.HoursFullPage,
		formatTime(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("upsert group policy: %w", err)
	}
	return nil
}

// PolicyFor implements policy.Source.
func (s *Store) PolicyFor(ctx context.Context, groupID string) (*policy.GroupPolicy, error) {
	return s.GetGroupPolicy(ctx, groupID)
}
