package curriculum

import "fmt"

// LineRange is an inclusive range of lines on a page.
type LineRange struct {
	Start int
	End   int
}

// Lines returns the number of lines in the range.
func (r LineRange) Lines() int {
	return r.End - r.Start + 1
}

// NextBatch computes the line range the next task for a stage should cover.
//
// Learning stages hand out batches sized by the group level: level 1 assigns
// one line at a time, level 2 splits the stage range into two near-equal
// batches, level 3 assigns the remainder of the range in one batch.
// Consolidation stages always cover their entire range regardless of level or
// cursor position.
//
// The function is pure: the same four inputs always yield the same range.
func NextBatch(stage Stage, pageLines, level, currentLine int) (LineRange, error) {
	if pageLines < 1 {
		return LineRange{}, fmt.Errorf("next batch: page lines must be positive (got %d)", pageLines)
	}
	if level < 1 || level > 3 {
		return LineRange{}, fmt.Errorf("next batch: level must be 1, 2, or 3 (got %d)", level)
	}

	stage = EffectiveStage(stage, pageLines)
	start, end := StageRange(stage, pageLines)

	if stage.Kind() != KindLearning {
		return LineRange{Start: start, End: end}, nil
	}

	if currentLine < start || currentLine > end {
		return LineRange{}, fmt.Errorf("next batch: line %d outside stage range %d-%d", currentLine, start, end)
	}

	switch level {
	case 1:
		return LineRange{Start: currentLine, End: currentLine}, nil
	case 2:
		// First batch takes the smaller half, e.g. 7 lines split 3+4.
		mid := start + (end-start+1)/2
		if currentLine < mid {
			return LineRange{Start: currentLine, End: mid - 1}, nil
		}
		return LineRange{Start: currentLine, End: end}, nil
	default:
		return LineRange{Start: currentLine, End: end}, nil
	}
}
