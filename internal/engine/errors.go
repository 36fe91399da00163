package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPolicyNotConfigured indicates the group has no stored policy.
	ErrPolicyNotConfigured = errors.New("group policy not configured")
	// ErrValidation indicates bad caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the operation lost against current state, such as
	// a verdict on an already-reviewed submission or a full task.
	ErrConflict = errors.New("conflict")
	// ErrDelivery indicates mentor notification failed; the submission stays
	// queued for retry.
	ErrDelivery = errors.New("delivery failure")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrConflict
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
