package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"murajaah/internal/curriculum"
	"murajaah/internal/engine"
	"murajaah/internal/notifications"
	"murajaah/internal/policy"
	"murajaah/internal/review"
	"murajaah/internal/store"
	"murajaah/internal/testsupport"
	"murajaah/internal/verification"
)

type recordingNotifier struct {
	mu        sync.Mutex
	mentor    []string
	verdicts  []bool
	completed int
	advanced  int
}

func (r *recordingNotifier) NotifySubmissionReady(_ context.Context, mentorID, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mentor = append(r.mentor, mentorID)
	return nil
}

func (r *recordingNotifier) NotifyVerdict(_ context.Context, _, _ string, passed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verdicts = append(r.verdicts, passed)
	return nil
}

func (r *recordingNotifier) NotifyTaskPassed(context.Context, string, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	return nil
}

func (r *recordingNotifier) NotifyStageAdvanced(context.Context, string, int, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanced++
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context, string) error { return nil }

var _ notifications.Service = (*recordingNotifier)(nil)

type stubScorer struct {
	score int
	err   error
}

func (s *stubScorer) Score(context.Context, string, string) (*verification.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &verification.Result{Score: s.score}, nil
}

type fixture struct {
	engine   *engine.Engine
	store    *store.Store
	notifier *recordingNotifier
	policy   *policy.GroupPolicy
}

func newFixture(t *testing.T, scorer verification.Scorer, tweak func(*policy.GroupPolicy)) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	pol := testsupport.SeedPolicy(t, st, "group-1", "mentor-1")
	if tweak != nil {
		tweak(pol)
		if err := st.UpsertGroupPolicy(context.Background(), pol); err != nil {
			t.Fatalf("UpsertGroupPolicy: %v", err)
		}
	}
	notifier := &recordingNotifier{}
	reviews := review.NewQueue(st, notifier, nil)
	eng := engine.New(st, st, scorer, reviews, notifier, nil)
	return &fixture{engine: eng, store: st, notifier: notifier, policy: pol}
}

// passTask settles passing submissions until the task completes.
func passTask(t *testing.T, f *fixture, task *store.Task) *store.VerdictResult {
	t.Helper()
	ctx := context.Background()
	var last *store.VerdictResult
	for i := task.PassedCount; i < task.RequiredCount; i++ {
		submit, err := f.engine.Submit(ctx, task.ID, "")
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		outcome, err := f.engine.RecordVerdict(ctx, "", submit.Submission.ID, true)
		if err != nil {
			t.Fatalf("RecordVerdict: %v", err)
		}
		last = outcome.Result
	}
	if last == nil || !last.TaskCompleted {
		t.Fatalf("task %d did not complete", task.ID)
	}
	return last
}

func TestOpenTaskIsIdempotent(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}
	// Page 1 is a short page of 5 lines; level 2 splits it 2+3.
	if task.PageNumber != 1 || task.StartLine != 1 || task.EndLine != 2 {
		t.Fatalf("unexpected first task: %#v", task)
	}
	if task.Stage != curriculum.StageFirstHalfLearn {
		t.Fatalf("expected learning stage, got %s", task.Stage)
	}
	if task.RequiredCount != 5 {
		t.Fatalf("expected learning target 5, got %d", task.RequiredCount)
	}
	if task.Deadline == nil {
		t.Fatal("expected advisory deadline")
	}

	again, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}
	if again.ID != task.ID {
		t.Fatalf("expected same task, got %d and %d", task.ID, again.ID)
	}
}

func TestOpenTaskRequiresPolicy(t *testing.T) {
	f := newFixture(t, nil, nil)
	if _, err := f.engine.OpenTask(context.Background(), "student-1", "group-unknown"); !errors.Is(err, engine.ErrPolicyNotConfigured) {
		t.Fatalf("expected ErrPolicyNotConfigured, got %v", err)
	}
}

func TestShortPageProgression(t *testing.T) {
	f := newFixture(t, nil, func(p *policy.GroupPolicy) {
		p.RequiredLearning = 1
		p.RequiredFullPage = 1
	})
	ctx := context.Background()

	// Page 1 has 5 lines: two learning batches at level 2, then the whole
	// page. The half-page stages never appear.
	expected := []struct {
		stage      curriculum.Stage
		start, end int
	}{
		{curriculum.StageFirstHalfLearn, 1, 2},
		{curriculum.StageFirstHalfLearn, 3, 5},
		{curriculum.StageFullPage, 1, 5},
	}
	for i, want := range expected {
		task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
		if err != nil {
			t.Fatalf("OpenTask %d: %v", i, err)
		}
		if task.Stage != want.stage || task.StartLine != want.start || task.EndLine != want.end {
			t.Fatalf("step %d: got stage=%s lines=%d-%d, want stage=%s lines=%d-%d",
				i, task.Stage, task.StartLine, task.EndLine, want.stage, want.start, want.end)
		}
		passTask(t, f, task)
	}

	progress, err := f.engine.Progress(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.CurrentPage != 2 || progress.CurrentLine != 1 || progress.CurrentStage != curriculum.FirstStage {
		t.Fatalf("expected cursor at page 2 start, got %#v", progress)
	}
}

func TestStandardPageWalksAllStages(t *testing.T) {
	f := newFixture(t, nil, func(p *policy.GroupPolicy) {
		p.Level = 3
		p.RequiredLearning = 1
		p.RequiredHalfPage = 1
		p.RequiredFullPage = 1
	})
	ctx := context.Background()

	// Park the cursor on a standard fifteen-line page.
	if err := f.store.SetProgress(ctx, &store.Progress{
		StudentID:    "student-1",
		GroupID:      "group-1",
		CurrentPage:  3,
		CurrentLine:  1,
		CurrentStage: curriculum.FirstStage,
	}); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	expected := []struct {
		stage      curriculum.Stage
		start, end int
	}{
		{curriculum.StageFirstHalfLearn, 1, 7},
		{curriculum.StageFirstHalfWhole, 1, 7},
		{curriculum.StageSecondHalfLearn, 8, 15},
		{curriculum.StageSecondHalfWhole, 8, 15},
		{curriculum.StageFullPage, 1, 15},
	}
	for i, want := range expected {
		task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
		if err != nil {
			t.Fatalf("OpenTask %d: %v", i, err)
		}
		if task.Stage != want.stage || task.StartLine != want.start || task.EndLine != want.end {
			t.Fatalf("step %d: got stage=%s lines=%d-%d, want stage=%s lines=%d-%d",
				i, task.Stage, task.StartLine, task.EndLine, want.stage, want.start, want.end)
		}
		passTask(t, f, task)
	}

	progress, err := f.engine.Progress(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.CurrentPage != 4 || progress.CurrentStage != curriculum.FirstStage {
		t.Fatalf("expected page turn to 4, got %#v", progress)
	}
}

func TestSubmitConfirmByNextRecording(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}

	first, err := f.engine.Submit(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if first.Submission.QueuedForReview {
		t.Fatal("first submission should wait unconfirmed")
	}
	if len(f.notifier.mentor) != 0 {
		t.Fatal("nothing should reach the mentor yet")
	}

	second, err := f.engine.Submit(ctx, task.ID, "rec-2")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if second.Existing {
		t.Fatal("distinct external id should create a new submission")
	}
	if len(f.notifier.mentor) != 1 {
		t.Fatalf("expected first submission delivered, got %d deliveries", len(f.notifier.mentor))
	}

	released, err := f.store.GetSubmission(ctx, first.Submission.ID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if !released.QueuedForReview || released.DeliveredAt == nil {
		t.Fatalf("first submission should be queued and delivered: %#v", released)
	}

	replay, err := f.engine.Submit(ctx, task.ID, "rec-2")
	if err != nil {
		t.Fatalf("Submit replay: %v", err)
	}
	if !replay.Existing || replay.Submission.ID != second.Submission.ID {
		t.Fatalf("replay should return the existing submission: %#v", replay)
	}
}

func TestSubmitExplicitConfirm(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}
	submit, err := f.engine.Submit(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	delivered, err := f.engine.Confirm(ctx, submit.Submission.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !delivered {
		t.Fatal("expected immediate delivery to idle mentor")
	}
}

func TestFullAutoSettlesClearScores(t *testing.T) {
	scorer := &stubScorer{score: 90}
	f := newFixture(t, scorer, func(p *policy.GroupPolicy) {
		p.Mode = policy.ModeFullAuto
		p.AIEnabled = true
		p.RequiredLearning = 2
	})
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}

	accepted, err := f.engine.Submit(ctx, task.ID, "rec-good")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if accepted.Decision != verification.DecisionAccept {
		t.Fatalf("expected accept, got %s", accepted.Decision)
	}
	if accepted.Verdict == nil || accepted.Submission.Status != store.SubmissionPassed {
		t.Fatalf("expected settled pass: %#v", accepted.Submission)
	}

	scorer.score = 30
	rejected, err := f.engine.Submit(ctx, task.ID, "rec-bad")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rejected.Decision != verification.DecisionReject {
		t.Fatalf("expected reject, got %s", rejected.Decision)
	}
	if rejected.Submission.Status != store.SubmissionFailed {
		t.Fatalf("expected settled fail: %#v", rejected.Submission)
	}

	scorer.score = 65
	queued, err := f.engine.Submit(ctx, task.ID, "rec-unclear")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if queued.Decision != verification.DecisionQueue {
		t.Fatalf("expected queue, got %s", queued.Decision)
	}
	if queued.Submission.Status != store.SubmissionPending {
		t.Fatalf("uncertain score should stay pending: %#v", queued.Submission)
	}

	if len(f.notifier.mentor) != 0 {
		t.Fatalf("auto verdicts should not reach the mentor, got %d deliveries", len(f.notifier.mentor))
	}
}

func TestScorerFailureDegradesToManual(t *testing.T) {
	f := newFixture(t, &stubScorer{err: errors.New("model down")}, func(p *policy.GroupPolicy) {
		p.Mode = policy.ModeFullAuto
		p.AIEnabled = true
	})
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}
	submit, err := f.engine.Submit(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submit.Decision != verification.DecisionQueue {
		t.Fatalf("scorer outage should queue, got %s", submit.Decision)
	}
	if submit.Submission.AIScore != nil {
		t.Fatal("no score should be recorded on failure")
	}
}

func TestRecordVerdictConflictsOnDoubleReview(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}
	submit, err := f.engine.Submit(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.engine.RecordVerdict(ctx, "mentor-1", submit.Submission.ID, true); err != nil {
		t.Fatalf("RecordVerdict: %v", err)
	}
	if _, err := f.engine.RecordVerdict(ctx, "mentor-1", submit.Submission.ID, false); !errors.Is(err, engine.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCancelUndoesUnconfirmedSubmission(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}

	if _, err := f.engine.Cancel(ctx, task.ID); !errors.Is(err, engine.ErrConflict) {
		t.Fatalf("expected ErrConflict with nothing pending, got %v", err)
	}

	submit, err := f.engine.Submit(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	cancelled, err := f.engine.Cancel(ctx, task.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.ID != submit.Submission.ID {
		t.Fatalf("cancelled wrong submission: %d", cancelled.ID)
	}

	fresh, err := f.store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if fresh.PendingCount != 0 {
		t.Fatalf("expected no pending submissions, got %d", fresh.PendingCount)
	}
}

func TestSubmitRejectsCompletedTask(t *testing.T) {
	f := newFixture(t, nil, func(p *policy.GroupPolicy) {
		p.RequiredLearning = 1
	})
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}
	passTask(t, f, task)

	if _, err := f.engine.Submit(ctx, task.ID, "late"); !errors.Is(err, engine.ErrConflict) {
		t.Fatalf("expected ErrConflict on completed task, got %v", err)
	}
}

func TestFailedVerdictsNeverAdvanceCursor(t *testing.T) {
	f := newFixture(t, nil, func(p *policy.GroupPolicy) {
		p.RequiredLearning = 2
	})
	ctx := context.Background()

	task, err := f.engine.OpenTask(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}

	for i := 0; i < 3; i++ {
		submit, err := f.engine.Submit(ctx, task.ID, "")
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if _, err := f.engine.RecordVerdict(ctx, "", submit.Submission.ID, false); err != nil {
			t.Fatalf("RecordVerdict %d: %v", i, err)
		}
	}

	fresh, err := f.store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if fresh.FailedCount != 3 || fresh.Status != store.TaskInProgress {
		t.Fatalf("failures should accumulate without completing: %#v", fresh)
	}

	progress, err := f.engine.Progress(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.CurrentLine != 1 || progress.CurrentStage != curriculum.FirstStage {
		t.Fatalf("cursor moved on failures: %#v", progress)
	}
}
