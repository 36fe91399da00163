package testsupport

import (
	"context"
	"testing"

	"murajaah/internal/config"
	"murajaah/internal/curriculum"
	"murajaah/internal/policy"
	"murajaah/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewTask creates an in-progress task for tests using the provided store.
func NewTask(t testing.TB, st *store.Store, task *store.Task) *store.Task {
	t.Helper()

	created, err := st.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("store.CreateTask: %v", err)
	}
	return created
}

// LearningTask returns a task template for the first learning batch of a
// standard page. Tests tweak fields before passing it to NewTask.
func LearningTask(studentID, groupID string) *store.Task {
	return &store.Task{
		StudentID:     studentID,
		GroupID:       groupID,
		PageNumber:    3,
		PageLines:     15,
		StartLine:     1,
		EndLine:       3,
		Stage:         curriculum.StageFirstHalfLearn,
		RequiredCount: 5,
	}
}

// SeedPolicy stores a manual-mode policy for the group and returns it.
func SeedPolicy(t testing.TB, st *store.Store, groupID, mentorID string) *policy.GroupPolicy {
	t.Helper()

	p := &policy.GroupPolicy{
		GroupID:          groupID,
		MentorID:         mentorID,
		Level:            2,
		Mode:             policy.ModeManual,
		AcceptThreshold:  85,
		RejectThreshold:  50,
		RequiredLearning: 5,
		RequiredHalfPage: 3,
		RequiredFullPage: 1,
		HoursLearning:    24,
		HoursHalfPage:    24,
		HoursFullPage:    48,
	}
	if err := st.UpsertGroupPolicy(context.Background(), p); err != nil {
		t.Fatalf("store.UpsertGroupPolicy: %v", err)
	}
	return p
}
