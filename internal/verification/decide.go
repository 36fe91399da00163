package verification

import "murajaah/internal/policy"

// Decision is the pre-review outcome for a submission.
type Decision string

const (
	// DecisionAccept settles the submission as passed without mentor review.
	DecisionAccept Decision = "accept"
	// DecisionReject settles the submission as failed without mentor review.
	DecisionReject Decision = "reject"
	// DecisionQueue hands the submission to the mentor queue.
	DecisionQueue Decision = "queue"
)

// Decide maps a verification mode and an optional AI score onto a decision.
//
// Only full-auto mode ever settles: a score at or above the accept threshold
// passes, a score strictly below the reject threshold fails, and anything in
// between queues. A missing score always queues regardless of mode, so a
// scorer outage degrades to manual review rather than blocking intake.
func Decide(mode policy.VerificationMode, score *int, acceptThreshold, rejectThreshold int) Decision {
	if mode != policy.ModeFullAuto || score == nil {
		return DecisionQueue
	}
	switch {
	case *score >= acceptThreshold:
		return DecisionAccept
	case *score < rejectThreshold:
		return DecisionReject
	default:
		return DecisionQueue
	}
}
