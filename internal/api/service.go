package api

import (
	"context"
	"fmt"

	"murajaah/internal/engine"
	"murajaah/internal/policy"
	"murajaah/internal/review"
	"murajaah/internal/store"
)

// Service wraps the engine and review queue behind transport-friendly views.
type Service struct {
	engine  *engine.Engine
	store   *store.Store
	reviews *review.Queue
}

// NewService constructs the API service.
func NewService(eng *engine.Engine, st *store.Store, reviews *review.Queue) *Service {
	return &Service{engine: eng, store: st, reviews: reviews}
}

// OpenTask opens (or returns) the task at the student's cursor.
func (s *Service) OpenTask(ctx context.Context, req OpenTaskRequest) (Task, error) {
	task, err := s.engine.OpenTask(ctx, req.StudentID, req.GroupID)
	if err != nil {
		return Task{}, err
	}
	return FromTask(task), nil
}

// Submit records an attempt against a task.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	result, err := s.engine.Submit(ctx, req.TaskID, req.ExternalID)
	if err != nil {
		return SubmitResponse{}, err
	}
	resp := SubmitResponse{
		Submission: FromSubmission(result.Submission),
		Existing:   result.Existing,
		Decision:   string(result.Decision),
	}
	if result.Verdict != nil {
		task := FromTask(result.Verdict.Task)
		resp.Task = &task
	}
	return resp, nil
}

// Verdict settles a submission with a mentor's judgement.
func (s *Service) Verdict(ctx context.Context, submissionID int64, req VerdictRequest) (VerdictResponse, error) {
	outcome, err := s.engine.RecordVerdict(ctx, req.MentorID, submissionID, req.Passed)
	if err != nil {
		return VerdictResponse{}, err
	}
	resp := VerdictResponse{
		Submission:    FromSubmission(outcome.Result.Submission),
		Task:          FromTask(outcome.Result.Task),
		TaskCompleted: outcome.Result.TaskCompleted,
		Advanced: FromAdvancement(
			outcome.Result.Advanced,
			outcome.Result.Task.StudentID,
			outcome.Result.Task.GroupID,
		),
	}
	if outcome.Next != nil {
		next := FromSubmission(outcome.Next)
		resp.Next = &next
	}
	return resp, nil
}

// Confirm releases a pending submission for mentor review.
func (s *Service) Confirm(ctx context.Context, submissionID int64) (ConfirmResponse, error) {
	delivered, err := s.engine.Confirm(ctx, submissionID)
	if err != nil {
		return ConfirmResponse{}, err
	}
	return ConfirmResponse{Delivered: delivered}, nil
}

// Cancel withdraws a submission. The identifier must name the most recent
// pending submission on its task.
func (s *Service) Cancel(ctx context.Context, submissionID int64) (Submission, error) {
	submission, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if submission == nil {
		return Submission{}, engine.Wrap(engine.ErrNotFound, "cancel", fmt.Sprintf("submission %d", submissionID), nil)
	}
	siblings, err := s.store.ListSubmissions(ctx, submission.TaskID)
	if err != nil {
		return Submission{}, err
	}
	var lastPending *store.Submission
	for _, sibling := range siblings {
		if sibling.Status == store.SubmissionPending {
			lastPending = sibling
		}
	}
	if lastPending == nil || lastPending.ID != submissionID {
		return Submission{}, engine.Wrap(engine.ErrConflict, "cancel", "only the most recent pending submission can be cancelled", nil)
	}
	cancelled, err := s.engine.Cancel(ctx, submission.TaskID)
	if err != nil {
		return Submission{}, err
	}
	return FromSubmission(cancelled), nil
}

// Progress returns the cursor plus the task currently open at it, if any.
func (s *Service) Progress(ctx context.Context, studentID, groupID string) (ProgressResponse, error) {
	progress, err := s.engine.Progress(ctx, studentID, groupID)
	if err != nil {
		return ProgressResponse{}, err
	}
	resp := ProgressResponse{Progress: FromProgress(progress)}

	tasks, err := s.store.ListTasks(ctx, studentID, groupID)
	if err != nil {
		return ProgressResponse{}, err
	}
	for _, task := range tasks {
		if task.Status == store.TaskInProgress {
			view := FromTask(task)
			resp.OpenTask = &view
			break
		}
	}
	return resp, nil
}

// ReviewNext describes what the mentor should be looking at.
func (s *Service) ReviewNext(ctx context.Context, mentorID string) (ReviewResponse, error) {
	active, err := s.reviews.Active(ctx, mentorID)
	if err != nil {
		return ReviewResponse{}, err
	}
	if active == nil {
		active, err = s.store.NextEligibleSubmission(ctx, mentorID)
		if err != nil {
			return ReviewResponse{}, err
		}
	}
	depth, err := s.reviews.Depth(ctx, mentorID)
	if err != nil {
		return ReviewResponse{}, err
	}

	resp := ReviewResponse{Depth: depth}
	if active != nil {
		view := FromSubmission(active)
		resp.Active = &view
		task, err := s.store.GetTask(ctx, active.TaskID)
		if err != nil {
			return ReviewResponse{}, err
		}
		if task != nil {
			taskView := FromTask(task)
			resp.Task = &taskView
		}
	}
	return resp, nil
}

// ReviewRetry re-attempts a failed mentor delivery and reports the new state.
func (s *Service) ReviewRetry(ctx context.Context, mentorID string) (ReviewResponse, error) {
	if _, err := s.reviews.Retry(ctx, mentorID); err != nil {
		return ReviewResponse{}, err
	}
	return s.ReviewNext(ctx, mentorID)
}

// GetPolicy returns the stored policy for a group.
func (s *Service) GetPolicy(ctx context.Context, groupID string) (Policy, error) {
	if groupID == "" {
		return Policy{}, engine.Wrap(engine.ErrValidation, "get policy", "group id is required", nil)
	}
	stored, err := s.store.GetGroupPolicy(ctx, groupID)
	if err != nil {
		return Policy{}, err
	}
	if stored == nil {
		return Policy{}, engine.Wrap(engine.ErrNotFound, "get policy", fmt.Sprintf("no policy for group %s", groupID), nil)
	}
	return FromPolicy(stored), nil
}

// SetPolicy stores a group's review policy and returns the stored view.
func (s *Service) SetPolicy(ctx context.Context, req Policy) (Policy, error) {
	if req.GroupID == "" {
		return Policy{}, engine.Wrap(engine.ErrValidation, "set policy", "group id is required", nil)
	}
	if req.MentorID == "" {
		return Policy{}, engine.Wrap(engine.ErrValidation, "set policy", "mentor id is required", nil)
	}
	mode, ok := policy.ParseMode(req.VerificationMode)
	if !ok {
		return Policy{}, engine.Wrap(engine.ErrValidation, "set policy", fmt.Sprintf("unknown verification mode %q", req.VerificationMode), nil)
	}
	if req.Level < 1 || req.Level > 3 {
		return Policy{}, engine.Wrap(engine.ErrValidation, "set policy", fmt.Sprintf("level must be 1-3, got %d", req.Level), nil)
	}
	stored := &policy.GroupPolicy{
		GroupID:          req.GroupID,
		MentorID:         req.MentorID,
		Level:            req.Level,
		Mode:             mode,
		AcceptThreshold:  req.AcceptThreshold,
		RejectThreshold:  req.RejectThreshold,
		AIEnabled:        req.AIEnabled,
		RequiredLearning: req.RequiredLearning,
		RequiredHalfPage: req.RequiredHalfPage,
		RequiredFullPage: req.RequiredFullPage,
		HoursLearning:    req.HoursLearning,
		HoursHalfPage:    req.HoursHalfPage,
		HoursFullPage:    req.HoursFullPage,
	}
	if err := s.store.UpsertGroupPolicy(ctx, stored); err != nil {
		return Policy{}, err
	}
	return FromPolicy(stored), nil
}

// Health returns the store's aggregate counters.
func (s *Service) Health(ctx context.Context) (*store.HealthSummary, error) {
	return s.store.Health(ctx)
}
