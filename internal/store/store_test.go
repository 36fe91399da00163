package store_test

import (
	"context"
	"errors"
	"testing"

	"murajaah/internal/curriculum"
	"murajaah/internal/policy"
	"murajaah/internal/store"
	"murajaah/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	task := testsupport.NewTask(t, st, testsupport.LearningTask("student-1", "group-1"))
	if task.ID == 0 {
		t.Fatal("expected task ID to be assigned")
	}
	if task.Status != store.TaskInProgress {
		t.Fatalf("expected in_progress, got %s", task.Status)
	}

	fetched, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if fetched == nil || fetched.StudentID != "student-1" {
		t.Fatalf("unexpected fetched task: %#v", fetched)
	}

	found, err := st.FindOpenTask(ctx, "student-1", "group-1", curriculum.StageFirstHalfLearn, 1)
	if err != nil {
		t.Fatalf("FindOpenTask failed: %v", err)
	}
	if found == nil || found.ID != task.ID {
		t.Fatalf("expected to find open task, got %#v", found)
	}
}

func TestGetTaskMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	task, err := st.GetTask(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task != nil {
		t.Fatalf("expected nil task, got %#v", task)
	}
}

func TestIntakeSubmissionIdempotentPerExternalID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	task := testsupport.NewTask(t, st, testsupport.LearningTask("student-1", "group-1"))

	first, err := st.IntakeSubmission(ctx, task.ID, "recording-1")
	if err != nil {
		t.Fatalf("first intake failed: %v", err)
	}
	if first.Existing {
		t.Fatal("first intake should create a new submission")
	}

	replay, err := st.IntakeSubmission(ctx, task.ID, "recording-1")
	if err != nil {
		t.Fatalf("replay intake failed: %v", err)
	}
	if !replay.Existing {
		t.Fatal("replay should report the existing submission")
	}
	if replay.Submission.ID != first.Submission.ID {
		t.Fatalf("replay returned submission %d, want %d", replay.Submission.ID, first.Submission.ID)
	}

	subs, err := st.ListSubmissions(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission after replay, got %d", len(subs))
	}
}

func TestIntakeSubmissionReleasesUnconfirmedPredecessor(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	task := testsupport.NewTask(t, st, testsupport.LearningTask("student-1", "group-1"))

	first, err := st.IntakeSubmission(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("first intake failed: %v", err)
	}
	if first.Released != nil {
		t.Fatal("first intake should not release anything")
	}
	if first.Submission.QueuedForReview {
		t.Fatal("fresh submission must start unconfirmed")
	}

	second, err := st.IntakeSubmission(ctx, task.ID, "rec-2")
	if err != nil {
		t.Fatalf("second intake failed: %v", err)
	}
	if second.Released == nil || second.Released.ID != first.Submission.ID {
		t.Fatalf("second intake should release the first submission, got %#v", second.Released)
	}

	released, err := st.GetSubmission(ctx, first.Submission.ID)
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if !released.QueuedForReview {
		t.Fatal("released submission should be queued for review")
	}
}

func TestIntakeSubmissionRejectsWhenFull(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	template := testsupport.LearningTask("student-1", "group-1")
	template.RequiredCount = 2
	task := testsupport.NewTask(t, st, template)

	if _, err := st.IntakeSubmission(ctx, task.ID, "rec-1"); err != nil {
		t.Fatalf("intake 1 failed: %v", err)
	}
	if _, err := st.IntakeSubmission(ctx, task.ID, "rec-2"); err != nil {
		t.Fatalf("intake 2 failed: %v", err)
	}
	if _, err := st.IntakeSubmission(ctx, task.ID, "rec-3"); !errors.Is(err, store.ErrTaskFull) {
		t.Fatalf("expected ErrTaskFull, got %v", err)
	}
}

func TestIntakeSubmissionMissingTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.IntakeSubmission(context.Background(), 42, "rec-1"); !errors.Is(err, store.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestApplyVerdictCountsAndCompletes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	template := testsupport.LearningTask("student-1", "group-1")
	template.RequiredCount = 2
	task := testsupport.NewTask(t, st, template)

	advance := func(task *store.Task, progress *store.Progress) *store.Advancement {
		return &store.Advancement{
			Page:  task.PageNumber,
			Line:  task.EndLine + 1,
			Stage: task.Stage,
		}
	}

	for i, verdict := range []store.SubmissionStatus{store.SubmissionFailed, store.SubmissionPassed} {
		intake, err := st.IntakeSubmission(ctx, task.ID, "")
		if err != nil {
			t.Fatalf("intake %d failed: %v", i, err)
		}
		result, err := st.ApplyVerdict(ctx, intake.Submission.ID, verdict, advance)
		if err != nil {
			t.Fatalf("verdict %d failed: %v", i, err)
		}
		if result.TaskCompleted {
			t.Fatalf("task completed too early after verdict %d", i)
		}
	}

	intake, err := st.IntakeSubmission(ctx, task.ID, "")
	if err != nil {
		t.Fatalf("final intake failed: %v", err)
	}
	result, err := st.ApplyVerdict(ctx, intake.Submission.ID, store.SubmissionPassed, advance)
	if err != nil {
		t.Fatalf("final verdict failed: %v", err)
	}
	if !result.TaskCompleted {
		t.Fatal("expected task completion on second pass")
	}
	if result.Task.PassedCount != 2 || result.Task.FailedCount != 1 {
		t.Fatalf("unexpected counters: passed=%d failed=%d", result.Task.PassedCount, result.Task.FailedCount)
	}
	if result.Advanced == nil || result.Advanced.Line != task.EndLine+1 {
		t.Fatalf("unexpected advancement: %#v", result.Advanced)
	}

	progress, err := st.GetProgress(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if progress == nil || progress.CurrentLine != task.EndLine+1 {
		t.Fatalf("cursor did not advance: %#v", progress)
	}
}

func TestApplyVerdictRejectsDoubleReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	task := testsupport.NewTask(t, st, testsupport.LearningTask("student-1", "group-1"))

	intake, err := st.IntakeSubmission(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("intake failed: %v", err)
	}
	if _, err := st.ApplyVerdict(ctx, intake.Submission.ID, store.SubmissionPassed, nil); err != nil {
		t.Fatalf("first verdict failed: %v", err)
	}
	if _, err := st.ApplyVerdict(ctx, intake.Submission.ID, store.SubmissionFailed, nil); !errors.Is(err, store.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	fetched, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if fetched.PassedCount != 1 || fetched.FailedCount != 0 {
		t.Fatalf("counters corrupted by losing verdict: passed=%d failed=%d", fetched.PassedCount, fetched.FailedCount)
	}
}

func TestCancelLastPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	task := testsupport.NewTask(t, st, testsupport.LearningTask("student-1", "group-1"))

	if _, err := st.CancelLastPending(ctx, task.ID); !errors.Is(err, store.ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending, got %v", err)
	}

	intake, err := st.IntakeSubmission(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("intake failed: %v", err)
	}
	cancelled, err := st.CancelLastPending(ctx, task.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.ID != intake.Submission.ID {
		t.Fatalf("cancelled submission %d, want %d", cancelled.ID, intake.Submission.ID)
	}

	subs, err := st.ListSubmissions(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected no submissions after cancel, got %d", len(subs))
	}
}

func TestMentorSlotCompareAndSwap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	claimed, err := st.ClaimMentorSlot(ctx, "mentor-1", 10)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected idle slot to be claimable")
	}

	claimed, err = st.ClaimMentorSlot(ctx, "mentor-1", 11)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if claimed {
		t.Fatal("occupied slot should refuse a different submission")
	}

	// Re-claiming the same submission is a no-op success.
	claimed, err = st.ClaimMentorSlot(ctx, "mentor-1", 10)
	if err != nil {
		t.Fatalf("re-claim failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected re-claim of same submission to succeed")
	}

	released, err := st.ReleaseMentorSlot(ctx, "mentor-1", 11)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if released {
		t.Fatal("release with wrong submission should fail")
	}
	released, err = st.ReleaseMentorSlot(ctx, "mentor-1", 10)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if !released {
		t.Fatal("expected release of active submission to succeed")
	}

	active, err := st.ActiveSubmission(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("ActiveSubmission failed: %v", err)
	}
	if active != nil {
		t.Fatalf("expected idle mentor, got %d", *active)
	}
}

func TestNextEligibleSubmissionOrdersOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedPolicy(t, st, "group-1", "mentor-1")
	task := testsupport.NewTask(t, st, testsupport.LearningTask("student-1", "group-1"))

	first, err := st.IntakeSubmission(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("intake 1 failed: %v", err)
	}
	second, err := st.IntakeSubmission(ctx, task.ID, "rec-2")
	if err != nil {
		t.Fatalf("intake 2 failed: %v", err)
	}

	// Only the released first submission is eligible until the second is
	// confirmed.
	next, err := st.NextEligibleSubmission(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("NextEligibleSubmission failed: %v", err)
	}
	if next == nil || next.ID != first.Submission.ID {
		t.Fatalf("expected submission %d, got %#v", first.Submission.ID, next)
	}

	if _, err := st.MarkQueuedForReview(ctx, second.Submission.ID); err != nil {
		t.Fatalf("MarkQueuedForReview failed: %v", err)
	}
	depth, err := st.ReviewQueueDepth(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("ReviewQueueDepth failed: %v", err)
	}
	if depth != 2 {
		t.Fatalf("expected depth 2, got %d", depth)
	}

	next, err = st.NextEligibleSubmission(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("NextEligibleSubmission failed: %v", err)
	}
	if next == nil || next.ID != first.Submission.ID {
		t.Fatalf("oldest submission should still lead the queue, got %#v", next)
	}

	if _, err := st.ApplyVerdict(ctx, first.Submission.ID, store.SubmissionPassed, nil); err != nil {
		t.Fatalf("verdict failed: %v", err)
	}
	next, err = st.NextEligibleSubmission(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("NextEligibleSubmission failed: %v", err)
	}
	if next == nil || next.ID != second.Submission.ID {
		t.Fatalf("expected queue to move to submission %d, got %#v", second.Submission.ID, next)
	}

	other, err := st.NextEligibleSubmission(ctx, "mentor-2")
	if err != nil {
		t.Fatalf("NextEligibleSubmission failed: %v", err)
	}
	if other != nil {
		t.Fatalf("mentor without groups should see an empty queue, got %#v", other)
	}
}

func TestGroupPolicyRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	missing, err := st.GetGroupPolicy(ctx, "group-1")
	if err != nil {
		t.Fatalf("GetGroupPolicy failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil policy for unconfigured group, got %#v", missing)
	}

	seeded := testsupport.SeedPolicy(t, st, "group-1", "mentor-1")
	fetched, err := st.GetGroupPolicy(ctx, "group-1")
	if err != nil {
		t.Fatalf("GetGroupPolicy failed: %v", err)
	}
	if fetched == nil || fetched.MentorID != "mentor-1" || fetched.Mode != policy.ModeManual {
		t.Fatalf("unexpected policy: %#v", fetched)
	}
	if fetched.RequiredLearning != seeded.RequiredLearning {
		t.Fatalf("required learning mismatch: %d != %d", fetched.RequiredLearning, seeded.RequiredLearning)
	}

	seeded.Mode = policy.ModeFullAuto
	seeded.AIEnabled = true
	if err := st.UpsertGroupPolicy(ctx, seeded); err != nil {
		t.Fatalf("UpsertGroupPolicy failed: %v", err)
	}
	updated, err := st.GetGroupPolicy(ctx, "group-1")
	if err != nil {
		t.Fatalf("GetGroupPolicy failed: %v", err)
	}
	if updated.Mode != policy.ModeFullAuto || !updated.AIEnabled {
		t.Fatalf("upsert did not replace policy: %#v", updated)
	}
}

func TestEnsureProgressSeedsPageOne(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	progress, err := st.EnsureProgress(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("EnsureProgress failed: %v", err)
	}
	if progress.CurrentPage != 1 || progress.CurrentLine != 1 || progress.CurrentStage != curriculum.FirstStage {
		t.Fatalf("unexpected initial cursor: %#v", progress)
	}

	progress.CurrentPage = 4
	progress.CurrentLine = 8
	progress.CurrentStage = curriculum.StageSecondHalfLearn
	if err := st.SetProgress(ctx, progress); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	again, err := st.EnsureProgress(ctx, "student-1", "group-1")
	if err != nil {
		t.Fatalf("EnsureProgress failed: %v", err)
	}
	if again.CurrentPage != 4 || again.CurrentLine != 8 {
		t.Fatalf("EnsureProgress overwrote existing cursor: %#v", again)
	}
}

func TestHealthAggregates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	task := testsupport.NewTask(t, st, testsupport.LearningTask("student-1", "group-1"))
	intake, err := st.IntakeSubmission(ctx, task.ID, "rec-1")
	if err != nil {
		t.Fatalf("intake failed: %v", err)
	}
	if _, err := st.MarkQueuedForReview(ctx, intake.Submission.ID); err != nil {
		t.Fatalf("MarkQueuedForReview failed: %v", err)
	}
	if _, err := st.EnsureProgress(ctx, "student-1", "group-1"); err != nil {
		t.Fatalf("EnsureProgress failed: %v", err)
	}

	summary, err := st.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if summary.OpenTasks != 1 || summary.PendingSubmissions != 1 || summary.QueuedForReview != 1 || summary.Students != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}
