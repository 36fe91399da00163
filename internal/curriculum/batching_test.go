package curriculum_test

import (
	"testing"

	"murajaah/internal/curriculum"
)

func TestNextBatchLevelTwoScenario(t *testing.T) {
	// Standard 15-line page, first half learning: 3+4 split.
	first, err := curriculum.NextBatch(curriculum.StageFirstHalfLearn, 15, 2, 1)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if first != (curriculum.LineRange{Start: 1, End: 3}) {
		t.Fatalf("first batch = %+v, want 1-3", first)
	}

	second, err := curriculum.NextBatch(curriculum.StageFirstHalfLearn, 15, 2, first.End+1)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if second != (curriculum.LineRange{Start: 4, End: 7}) {
		t.Fatalf("second batch = %+v, want 4-7", second)
	}

	whole, err := curriculum.NextBatch(curriculum.StageFirstHalfWhole, 15, 2, 1)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if whole != (curriculum.LineRange{Start: 1, End: 7}) {
		t.Fatalf("consolidation batch = %+v, want 1-7", whole)
	}
}

func TestNextBatchSecondHalfEvenSplit(t *testing.T) {
	// 8-line second half splits 4+4.
	first, err := curriculum.NextBatch(curriculum.StageSecondHalfLearn, 15, 2, 8)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if first != (curriculum.LineRange{Start: 8, End: 11}) {
		t.Fatalf("first batch = %+v, want 8-11", first)
	}
	second, err := curriculum.NextBatch(curriculum.StageSecondHalfLearn, 15, 2, 12)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if second != (curriculum.LineRange{Start: 12, End: 15}) {
		t.Fatalf("second batch = %+v, want 12-15", second)
	}
}

func TestNextBatchCoversStageRangeExactly(t *testing.T) {
	// Successive batches must tile the stage range with no gaps or overlaps.
	stages := []curriculum.Stage{curriculum.StageFirstHalfLearn, curriculum.StageSecondHalfLearn}
	for _, pageLines := range []int{5, 6, 15} {
		for _, stage := range stages {
			eff := curriculum.EffectiveStage(stage, pageLines)
			if eff.Kind() != curriculum.KindLearning {
				continue
			}
			lo, hi := curriculum.StageRange(eff, pageLines)
			for level := 1; level <= 3; level++ {
				line := lo
				for line <= hi {
					batch, err := curriculum.NextBatch(stage, pageLines, level, line)
					if err != nil {
						t.Fatalf("pageLines=%d stage=%s level=%d line=%d: %v", pageLines, stage, level, line, err)
					}
					if batch.Start != line {
						t.Fatalf("pageLines=%d stage=%s level=%d: batch starts at %d, cursor at %d", pageLines, stage, level, batch.Start, line)
					}
					if batch.End > hi {
						t.Fatalf("pageLines=%d stage=%s level=%d: batch end %d beyond range end %d", pageLines, stage, level, batch.End, hi)
					}
					line = batch.End + 1
				}
				if line != hi+1 {
					t.Fatalf("pageLines=%d stage=%s level=%d: coverage ended at %d, want %d", pageLines, stage, level, line, hi+1)
				}
			}
		}
	}
}

func TestNextBatchLevelOneIsSingleLine(t *testing.T) {
	batch, err := curriculum.NextBatch(curriculum.StageFirstHalfLearn, 15, 1, 5)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if batch.Start != 5 || batch.End != 5 {
		t.Fatalf("level 1 batch = %+v, want 5-5", batch)
	}
}

func TestNextBatchLevelThreeTakesWholeHalf(t *testing.T) {
	batch, err := curriculum.NextBatch(curriculum.StageSecondHalfLearn, 15, 3, 8)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if batch.Start != 8 || batch.End != 15 {
		t.Fatalf("level 3 batch = %+v, want 8-15", batch)
	}
}

func TestNextBatchShortPageConsolidation(t *testing.T) {
	// Intermediate stages collapse to the whole-page range on short pages.
	batch, err := curriculum.NextBatch(curriculum.StageFirstHalfWhole, 6, 1, 1)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if batch.Start != 1 || batch.End != 6 {
		t.Fatalf("short page consolidation = %+v, want 1-6", batch)
	}
}

func TestNextBatchValidation(t *testing.T) {
	if _, err := curriculum.NextBatch(curriculum.StageFirstHalfLearn, 15, 0, 1); err == nil {
		t.Fatal("expected error for level 0")
	}
	if _, err := curriculum.NextBatch(curriculum.StageFirstHalfLearn, 0, 1, 1); err == nil {
		t.Fatal("expected error for zero page lines")
	}
	if _, err := curriculum.NextBatch(curriculum.StageFirstHalfLearn, 15, 1, 9); err == nil {
		t.Fatal("expected error for cursor outside stage range")
	}
}
