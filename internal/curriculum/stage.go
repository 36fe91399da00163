package curriculum

import "strings"

// Stage identifies a step in the fixed memorization curriculum for one page.
type Stage string

const (
	// StageFirstHalfLearn memorizes the first half of the page line by line.
	StageFirstHalfLearn Stage = "stage_1_1"
	// StageFirstHalfWhole recites the first half as a single range.
	StageFirstHalfWhole Stage = "stage_1_2"
	// StageSecondHalfLearn memorizes the second half line by line.
	StageSecondHalfLearn Stage = "stage_2_1"
	// StageSecondHalfWhole recites the second half as a single range.
	StageSecondHalfWhole Stage = "stage_2_2"
	// StageFullPage recites the whole page from memory.
	StageFullPage Stage = "stage_3"
)

// FirstStage is the stage every page starts at.
const FirstStage = StageFirstHalfLearn

// ShortPageMaxLines is the largest line count treated as a short page. Short
// pages skip the half-page stages entirely.
const ShortPageMaxLines = 7

// Kind partitions stages by how submissions against them are reviewed and counted.
type Kind string

const (
	// KindLearning stages are batched by level and eligible for AI pre-screening.
	KindLearning Kind = "learning"
	// KindHalfPage stages consolidate one half of the page as a single range.
	KindHalfPage Kind = "half_page"
	// KindFullPage stages consolidate the whole page as a single range.
	KindFullPage Kind = "full_page"
)

var allStages = []Stage{
	StageFirstHalfLearn,
	StageFirstHalfWhole,
	StageSecondHalfLearn,
	StageSecondHalfWhole,
	StageFullPage,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

var standardNext = map[Stage]Stage{
	StageFirstHalfLearn:  StageFirstHalfWhole,
	StageFirstHalfWhole:  StageSecondHalfLearn,
	StageSecondHalfLearn: StageSecondHalfWhole,
	StageSecondHalfWhole: StageFullPage,
}

var shortNext = map[Stage]Stage{
	StageFirstHalfLearn: StageFullPage,
}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// Kind returns the review kind of a stage.
func (s Stage) Kind() Kind {
	switch s {
	case StageFirstHalfLearn, StageSecondHalfLearn:
		return KindLearning
	case StageFirstHalfWhole, StageSecondHalfWhole:
		return KindHalfPage
	default:
		return KindFullPage
	}
}

// IsShortPage reports whether a page collapses to the two-stage curriculum.
func IsShortPage(pageLines int) bool {
	return pageLines <= ShortPageMaxLines
}

// EffectiveStage maps a stage onto the collapsed curriculum for short pages.
// On a short page only the initial learning stage and the whole-page stage
// exist; every intermediate stage resolves to the whole-page stage. Standard
// pages return the stage unchanged.
func EffectiveStage(stage Stage, pageLines int) Stage {
	if !IsShortPage(pageLines) {
		return stage
	}
	if stage == StageFirstHalfLearn {
		return stage
	}
	return StageFullPage
}

// NextStage returns the stage that follows current, or pageDone=true when the
// current stage was the last one for the page shape.
func NextStage(current Stage, pageLines int) (next Stage, pageDone bool) {
	current = EffectiveStage(current, pageLines)
	table := standardNext
	if IsShortPage(pageLines) {
		table = shortNext
	}
	next, ok := table[current]
	if !ok {
		return FirstStage, true
	}
	return next, false
}

// StartLine returns the line the cursor moves to when a stage begins.
func StartLine(stage Stage, pageLines int) int {
	if IsShortPage(pageLines) {
		return 1
	}
	switch stage {
	case StageSecondHalfLearn, StageSecondHalfWhole:
		return pageLines/2 + 1
	default:
		return 1
	}
}

// StageRange returns the inclusive line range a stage covers.
func StageRange(stage Stage, pageLines int) (start, end int) {
	if IsShortPage(pageLines) {
		return 1, pageLines
	}
	half := pageLines / 2
	switch stage {
	case StageFirstHalfLearn, StageFirstHalfWhole:
		return 1, half
	case StageSecondHalfLearn, StageSecondHalfWhole:
		return half + 1, pageLines
	default:
		return 1, pageLines
	}
}

// PageLines returns the line count of a page in the reference curriculum.
// The opening two pages are short; every other page carries fifteen lines.
func PageLines(pageNumber int) int {
	switch pageNumber {
	case 1:
		return 5
	case 2:
		return 6
	default:
		return 15
	}
}
