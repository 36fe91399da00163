package curriculum_test

import (
	"testing"

	"murajaah/internal/curriculum"
)

func TestStandardPageVisitsEveryStageInOrder(t *testing.T) {
	want := []curriculum.Stage{
		curriculum.StageFirstHalfLearn,
		curriculum.StageFirstHalfWhole,
		curriculum.StageSecondHalfLearn,
		curriculum.StageSecondHalfWhole,
		curriculum.StageFullPage,
	}

	stage := curriculum.FirstStage
	var visited []curriculum.Stage
	for i := 0; i < 10; i++ {
		visited = append(visited, stage)
		next, done := curriculum.NextStage(stage, 15)
		if done {
			if next != curriculum.FirstStage {
				t.Fatalf("page turn should land on first stage, got %s", next)
			}
			break
		}
		stage = next
	}

	if len(visited) != len(want) {
		t.Fatalf("visited %d stages, want %d: %v", len(visited), len(want), visited)
	}
	for i, stage := range visited {
		if stage != want[i] {
			t.Fatalf("stage %d: got %s want %s", i, stage, want[i])
		}
	}
}

func TestShortPageCollapsesToTwoStages(t *testing.T) {
	for _, pageLines := range []int{5, 6, 7} {
		next, done := curriculum.NextStage(curriculum.StageFirstHalfLearn, pageLines)
		if done || next != curriculum.StageFullPage {
			t.Fatalf("pageLines=%d: expected full page stage, got %s done=%v", pageLines, next, done)
		}
		next, done = curriculum.NextStage(curriculum.StageFullPage, pageLines)
		if !done || next != curriculum.FirstStage {
			t.Fatalf("pageLines=%d: expected page turn, got %s done=%v", pageLines, next, done)
		}
	}
}

func TestEffectiveStageCollapsesIntermediates(t *testing.T) {
	for _, stage := range []curriculum.Stage{
		curriculum.StageFirstHalfWhole,
		curriculum.StageSecondHalfLearn,
		curriculum.StageSecondHalfWhole,
		curriculum.StageFullPage,
	} {
		if got := curriculum.EffectiveStage(stage, 6); got != curriculum.StageFullPage {
			t.Fatalf("stage %s: got %s", stage, got)
		}
	}
	if got := curriculum.EffectiveStage(curriculum.StageFirstHalfLearn, 6); got != curriculum.StageFirstHalfLearn {
		t.Fatalf("learning stage should survive collapse, got %s", got)
	}
	if got := curriculum.EffectiveStage(curriculum.StageSecondHalfLearn, 15); got != curriculum.StageSecondHalfLearn {
		t.Fatalf("standard page should not collapse, got %s", got)
	}
}

func TestStartLineAndStageRange(t *testing.T) {
	cases := []struct {
		stage             curriculum.Stage
		pageLines         int
		wantStartLine     int
		wantLo, wantHi    int
	}{
		{curriculum.StageFirstHalfLearn, 15, 1, 1, 7},
		{curriculum.StageFirstHalfWhole, 15, 1, 1, 7},
		{curriculum.StageSecondHalfLearn, 15, 8, 8, 15},
		{curriculum.StageSecondHalfWhole, 15, 8, 8, 15},
		{curriculum.StageFullPage, 15, 1, 1, 15},
		{curriculum.StageFirstHalfLearn, 5, 1, 1, 5},
		{curriculum.StageFullPage, 6, 1, 1, 6},
	}
	for _, tc := range cases {
		if got := curriculum.StartLine(tc.stage, tc.pageLines); got != tc.wantStartLine {
			t.Errorf("StartLine(%s, %d) = %d, want %d", tc.stage, tc.pageLines, got, tc.wantStartLine)
		}
		lo, hi := curriculum.StageRange(tc.stage, tc.pageLines)
		if lo != tc.wantLo || hi != tc.wantHi {
			t.Errorf("StageRange(%s, %d) = %d-%d, want %d-%d", tc.stage, tc.pageLines, lo, hi, tc.wantLo, tc.wantHi)
		}
	}
}

func TestParseStage(t *testing.T) {
	if stage, ok := curriculum.ParseStage(" Stage_2_1 "); !ok || stage != curriculum.StageSecondHalfLearn {
		t.Fatalf("unexpected parse result: %s %v", stage, ok)
	}
	if _, ok := curriculum.ParseStage("stage_9"); ok {
		t.Fatal("expected unknown stage to fail")
	}
	if _, ok := curriculum.ParseStage(""); ok {
		t.Fatal("expected empty stage to fail")
	}
}

func TestStageKinds(t *testing.T) {
	if curriculum.StageFirstHalfLearn.Kind() != curriculum.KindLearning {
		t.Fatal("stage_1_1 should be learning")
	}
	if curriculum.StageSecondHalfWhole.Kind() != curriculum.KindHalfPage {
		t.Fatal("stage_2_2 should be half page")
	}
	if curriculum.StageFullPage.Kind() != curriculum.KindFullPage {
		t.Fatal("stage_3 should be full page")
	}
}

func TestPageLines(t *testing.T) {
	if curriculum.PageLines(1) != 5 || curriculum.PageLines(2) != 6 || curriculum.PageLines(3) != 15 {
		t.Fatal("unexpected reference page shapes")
	}
}
