package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTaskID is the standardized structured logging key for task identifiers.
	FieldTaskID = "task_id"
	// FieldSubmissionID is the standardized structured logging key for submission identifiers.
	FieldSubmissionID = "submission_id"
	// FieldStudentID is the standardized structured logging key for student identifiers.
	FieldStudentID = "student_id"
	// FieldMentorID is the standardized structured logging key for mentor identifiers.
	FieldMentorID = "mentor_id"
	// FieldStage is the standardized structured logging key for curriculum stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

type contextKey string

const (
	taskIDKey       contextKey = "task_id"
	submissionIDKey contextKey = "submission_id"
	requestIDKey    contextKey = "request_id"
)

// WithTaskID stores a task identifier for structured logging.
func WithTaskID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, taskIDKey, id)
}

// WithSubmissionID stores a submission identifier for structured logging.
func WithSubmissionID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, submissionIDKey, id)
}

// WithRequestID stores a correlation identifier for structured logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := ctx.Value(taskIDKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldTaskID, id))
	}
	if id, ok := ctx.Value(submissionIDKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldSubmissionID, id))
	}
	if rid, ok := ctx.Value(requestIDKey).(string); ok && rid != "" {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
