package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"murajaah/internal/logging"
	"murajaah/internal/notifications"
	"murajaah/internal/store"
)

// ErrDeliveryFailed indicates the mentor notification could not be sent. The
// submission stays queued and can be retried.
var ErrDeliveryFailed = errors.New("mentor delivery failed")

// Queue coordinates the single-item review flow for mentors.
type Queue struct {
	store    *store.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// NewQueue constructs a review queue.
func NewQueue(st *store.Store, notifier notifications.Service, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Queue{
		store:    st,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "review"),
	}
}

// Enqueue flags a submission for mentor review and attempts immediate
// delivery. Returns true when the submission (or an older one ahead of it)
// is now in front of the mentor.
func (q *Queue) Enqueue(ctx context.Context, submissionID int64) (bool, error) {
	if _, err := q.store.MarkQueuedForReview(ctx, submissionID); err != nil {
		return false, err
	}
	mentorID, err := q.mentorFor(ctx, submissionID)
	if err != nil {
		return false, err
	}
	return q.deliverNext(ctx, mentorID)
}

// OnVerdict releases the mentor's slot after a verdict and pulls the next
// queued submission forward. Returns the submission now in front of the
// mentor, or nil when the queue drained.
func (q *Queue) OnVerdict(ctx context.Context, mentorID string, submissionID int64) (*store.Submission, error) {
	if _, err := q.store.ReleaseMentorSlot(ctx, mentorID, submissionID); err != nil {
		return nil, err
	}
	if _, err := q.deliverNext(ctx, mentorID); err != nil {
		return nil, err
	}
	return q.Active(ctx, mentorID)
}

// Retry re-attempts delivery for a mentor whose last hand-off failed.
func (q *Queue) Retry(ctx context.Context, mentorID string) (bool, error) {
	return q.deliverNext(ctx, mentorID)
}

// Active returns the submission currently in front of a mentor, or nil.
func (q *Queue) Active(ctx context.Context, mentorID string) (*store.Submission, error) {
	activeID, err := q.store.ActiveSubmission(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if activeID == nil {
		return nil, nil
	}
	return q.store.GetSubmission(ctx, *activeID)
}

// Depth reports how many submissions are waiting across the mentor's groups.
func (q *Queue) Depth(ctx context.Context, mentorID string) (int, error) {
	return q.store.ReviewQueueDepth(ctx, mentorID)
}

// deliverNext claims the mentor's slot for the oldest eligible submission and
// notifies the mentor. A busy slot or an empty queue is a quiet no-op.
func (q *Queue) deliverNext(ctx context.Context, mentorID string) (bool, error) {
	active, err := q.store.ActiveSubmission(ctx, mentorID)
	if err != nil {
		return false, err
	}

	var submission *store.Submission
	if active != nil {
		submission, err = q.store.GetSubmission(ctx, *active)
		if err != nil {
			return false, err
		}
		if submission == nil {
			// Slot points at a deleted submission; clear it and retry.
			if _, err := q.store.ReleaseMentorSlot(ctx, mentorID, *active); err != nil {
				return false, err
			}
			return q.deliverNext(ctx, mentorID)
		}
		if submission.DeliveredAt != nil {
			return true, nil
		}
	} else {
		submission, err = q.store.NextEligibleSubmission(ctx, mentorID)
		if err != nil {
			return false, err
		}
		if submission == nil {
			return false, nil
		}
		claimed, err := q.store.ClaimMentorSlot(ctx, mentorID, submission.ID)
		if err != nil {
			return false, err
		}
		if !claimed {
			// Lost the race to a concurrent delivery.
			return true, nil
		}
	}

	task, err := q.store.GetTask(ctx, submission.TaskID)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, store.ErrTaskNotFound
	}

	if err := q.notifier.NotifySubmissionReady(ctx, mentorID, task.StudentID, TaskLabel(task)); err != nil {
		q.logger.Warn("mentor delivery failed",
			logging.String(logging.FieldMentorID, mentorID),
			logging.Int64(logging.FieldSubmissionID, submission.ID),
			logging.Error(err),
		)
		if recordErr := q.store.RecordDeliveryAttempt(ctx, submission.ID, err.Error()); recordErr != nil {
			return false, recordErr
		}
		if _, releaseErr := q.store.ReleaseMentorSlot(ctx, mentorID, submission.ID); releaseErr != nil {
			return false, releaseErr
		}
		return false, fmt.Errorf("%w: %s", ErrDeliveryFailed, err)
	}

	if err := q.store.MarkDelivered(ctx, submission.ID, time.Now().UTC()); err != nil {
		return false, err
	}
	q.logger.Info("submission delivered",
		logging.String(logging.FieldMentorID, mentorID),
		logging.Int64(logging.FieldSubmissionID, submission.ID),
		logging.Int64(logging.FieldTaskID, task.ID),
	)
	return true, nil
}

func (q *Queue) mentorFor(ctx context.Context, submissionID int64) (string, error) {
	submission, err := q.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return "", err
	}
	if submission == nil {
		return "", store.ErrSubmissionNotFound
	}
	task, err := q.store.GetTask(ctx, submission.TaskID)
	if err != nil {
		return "", err
	}
	if task == nil {
		return "", store.ErrTaskNotFound
	}
	groupPolicy, err := q.store.GetGroupPolicy(ctx, task.GroupID)
	if err != nil {
		return "", err
	}
	if groupPolicy == nil {
		return "", fmt.Errorf("group %s has no policy", task.GroupID)
	}
	return groupPolicy.MentorID, nil
}

// TaskLabel renders a task as a short human-readable description for
// notifications and tables.
func TaskLabel(task *store.Task) string {
	if task == nil {
		return ""
	}
	if task.StartLine == task.EndLine {
		return fmt.Sprintf("page %d line %d (%s)", task.PageNumber, task.StartLine, task.Stage)
	}
	return fmt.Sprintf("page %d lines %d-%d (%s)", task.PageNumber, task.StartLine, task.EndLine, task.Stage)
}
