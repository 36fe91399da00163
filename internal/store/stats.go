package store

import (
	"context"
	"fmt"
)

// Health aggregates counters across the engine tables for the status surface.
func (s *Store) Health(ctx context.Context) (*HealthSummary, error) {
	ctx = ensureContext(ctx)
	summary := &HealthSummary{}

	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM tasks WHERE status = 'in_progress'`, &summary.OpenTasks},
		{`SELECT COUNT(*) FROM tasks WHERE status = 'passed'`, &summary.CompletedTasks},
		{`SELECT COUNT(*) FROM submissions WHERE status = 'pending'`, &summary.PendingSubmissions},
		{`SELECT COUNT(*) FROM submissions WHERE status = 'pending' AND queued_for_review = 1`, &summary.QueuedForReview},
		{`SELECT COUNT(DISTINCT student_id) FROM progress`, &summary.Students},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("health query: %w", err)
		}
	}
	return summary, nil
}
