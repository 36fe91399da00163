package store

import "errors"

var (
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrTaskNotFound indicates the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrSubmissionNotFound indicates the referenced submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrTaskFull indicates the task has no open slot for another submission.
	ErrTaskFull = errors.New("task has no open submission slot")
	// ErrAlreadyReviewed indicates a verdict was already recorded for the submission.
	ErrAlreadyReviewed = errors.New("submission already reviewed")
	// ErrNothingPending indicates there is no pending submission to act on.
	ErrNothingPending = errors.New("no pending submission")
)
