package api_test

import (
	"context"
	"errors"
	"testing"

	"murajaah/internal/api"
	"murajaah/internal/engine"
	"murajaah/internal/notifications"
	"murajaah/internal/review"
	"murajaah/internal/testsupport"
)

func newService(t *testing.T) *api.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedPolicy(t, st, "group-1", "mentor-1")

	notifier := notifications.NewService(cfg)
	reviews := review.NewQueue(st, notifier, nil)
	eng := engine.New(st, st, nil, reviews, notifier, nil)
	return api.NewService(eng, st, reviews)
}

func TestCancelRejectsOlderSubmission(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	task, err := svc.OpenTask(ctx, api.OpenTaskRequest{StudentID: "student-1", GroupID: "group-1"})
	if err != nil {
		t.Fatalf("OpenTask: %v", err)
	}
	first, err := svc.Submit(ctx, api.SubmitRequest{TaskID: task.ID, ExternalID: "rec-1"})
	if err != nil {
		t.Fatalf("Submit first: %v", err)
	}
	if _, err := svc.Submit(ctx, api.SubmitRequest{TaskID: task.ID, ExternalID: "rec-2"}); err != nil {
		t.Fatalf("Submit second: %v", err)
	}

	if _, err := svc.Cancel(ctx, first.Submission.ID); !errors.Is(err, engine.ErrConflict) {
		t.Fatalf("expected conflict cancelling older submission, got %v", err)
	}
}

func TestCancelUnknownSubmission(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Cancel(context.Background(), 404); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetPolicyValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	base := api.Policy{
		GroupID:          "group-2",
		MentorID:         "mentor-2",
		Level:            2,
		VerificationMode: "manual",
		RequiredLearning: 5,
		RequiredHalfPage: 3,
		RequiredFullPage: 1,
	}

	cases := []struct {
		name  string
		tweak func(*api.Policy)
	}{
		{"missing group", func(p *api.Policy) { p.GroupID = "" }},
		{"missing mentor", func(p *api.Policy) { p.MentorID = "" }},
		{"bad mode", func(p *api.Policy) { p.VerificationMode = "psychic" }},
		{"bad level", func(p *api.Policy) { p.Level = 9 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.tweak(&req)
			if _, err := svc.SetPolicy(ctx, req); !errors.Is(err, engine.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	stored, err := svc.SetPolicy(ctx, base)
	if err != nil {
		t.Fatalf("SetPolicy: %v", err)
	}
	if stored.VerificationMode != "manual" || stored.MentorID != "mentor-2" {
		t.Fatalf("unexpected stored policy: %+v", stored)
	}

	fetched, err := svc.GetPolicy(ctx, "group-2")
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if fetched.Level != 2 {
		t.Fatalf("unexpected fetched level %d", fetched.Level)
	}
}

func TestGetPolicyMissingGroup(t *testing.T) {
	svc := newService(t)

	if _, err := svc.GetPolicy(context.Background(), "ghost"); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
