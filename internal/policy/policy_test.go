package policy_test

import (
	"testing"
	"time"

	"murajaah/internal/curriculum"
	"murajaah/internal/policy"
)

func samplePolicy() *policy.GroupPolicy {
	return &policy.GroupPolicy{
		GroupID:          "g1",
		MentorID:         "m1",
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
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want policy.VerificationMode
		ok   bool
	}{
		{"manual", policy.ModeManual, true},
		{" SEMI_AUTO ", policy.ModeSemiAuto, true},
		{"full_auto", policy.ModeFullAuto, true},
		{"auto", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := policy.ParseMode(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRequiredCountPerKind(t *testing.T) {
	p := samplePolicy()
	if got := p.RequiredCount(curriculum.KindLearning); got != 5 {
		t.Fatalf("learning required = %d", got)
	}
	if got := p.RequiredCount(curriculum.KindHalfPage); got != 3 {
		t.Fatalf("half page required = %d", got)
	}
	if got := p.RequiredCount(curriculum.KindFullPage); got != 1 {
		t.Fatalf("full page required = %d", got)
	}
}

func TestDeadlineUsesStageHours(t *testing.T) {
	p := samplePolicy()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	deadline := policy.Deadline(p, curriculum.StageFullPage, now)
	if deadline == nil {
		t.Fatal("expected deadline")
	}
	if want := now.Add(48 * time.Hour); !deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", deadline, want)
	}
}

func TestDeadlineSuppressedWhenHoursZero(t *testing.T) {
	p := samplePolicy()
	p.HoursLearning = 0
	if deadline := policy.Deadline(p, curriculum.StageFirstHalfLearn, time.Now()); deadline != nil {
		t.Fatalf("expected suppressed deadline, got %v", deadline)
	}
}

func TestRemainingClampsToZero(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	if got := policy.Remaining(&past, now); got != 0 {
		t.Fatalf("expired deadline should report zero, got %v", got)
	}
	future := now.Add(90 * time.Minute)
	if got := policy.Remaining(&future, now); got != 90*time.Minute {
		t.Fatalf("remaining = %v", got)
	}
	if got := policy.Remaining(nil, now); got != 0 {
		t.Fatalf("nil deadline should report zero, got %v", got)
	}
}
