package policy

import (
	"context"
	"strings"

	"murajaah/internal/curriculum"
)

// VerificationMode controls how much of the review pipeline is automated.
type VerificationMode string

const (
	// ModeManual always queues submissions for the mentor.
	ModeManual VerificationMode = "manual"
	// ModeSemiAuto queues for the mentor with the AI score shown as a hint.
	ModeSemiAuto VerificationMode = "semi_auto"
	// ModeFullAuto settles clear scores automatically and queues the rest.
	ModeFullAuto VerificationMode = "full_auto"
)

var allModes = []VerificationMode{ModeManual, ModeSemiAuto, ModeFullAuto}

// ParseMode converts a string into a known VerificationMode.
func ParseMode(value string) (VerificationMode, bool) {
	normalized := VerificationMode(strings.ToLower(strings.TrimSpace(value)))
	for _, mode := range allModes {
		if normalized == mode {
			return mode, true
		}
	}
	return "", false
}

// GroupPolicy is the read-only per-group configuration snapshot the engine
// consumes: batching level, review automation, repetition targets, and stage
// hours for advisory deadlines.
type GroupPolicy struct {
	GroupID         string
	MentorID        string
	Level           int
	Mode            VerificationMode
	AcceptThreshold int
	RejectThreshold int
	AIEnabled       bool

	RequiredLearning int
	RequiredHalfPage int
	RequiredFullPage int

	HoursLearning float64
	HoursHalfPage float64
	HoursFullPage float64
}

// RequiredCount returns the repetition target for a stage kind.
func (p *GroupPolicy) RequiredCount(kind curriculum.Kind) int {
	switch kind {
	case curriculum.KindLearning:
		return p.RequiredLearning
	case curriculum.KindHalfPage:
		return p.RequiredHalfPage
	default:
		return p.RequiredFullPage
	}
}

// Hours returns the advisory deadline hours for a stage kind. Zero means the
// deadline is suppressed.
func (p *GroupPolicy) Hours(kind curriculum.Kind) float64 {
	switch kind {
	case curriculum.KindLearning:
		return p.HoursLearning
	case curriculum.KindHalfPage:
		return p.HoursHalfPage
	default:
		return p.HoursFullPage
	}
}

// Source supplies group policy snapshots. A nil policy with a nil error means
// the group has no configured policy.
type Source interface {
	PolicyFor(ctx context.Context, groupID string) (*GroupPolicy, error)
}
