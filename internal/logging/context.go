package logging

import (
	"context"
	"log/slog"

	"rtk/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTask is the standardized key for pipeline task names.
	FieldTask = "task"
	// FieldKind is the standardized key for task kinds.
	FieldKind = "kind"
	// FieldBatch is the standardized key for 1-based batch numbers.
	FieldBatch = "batch"
	// FieldRunID is the standardized key for run correlation identifiers.
	FieldRunID = "run_id"
	// FieldEventType classifies a log line for filtering (task_start, item_failed, ...).
	FieldEventType = "event_type"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldCommandOutput carries the captured tail of an external program's output.
	FieldCommandOutput = "command_output"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if batch, ok := services.BatchFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldBatch, batch))
	}
	if name, ok := services.TaskFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTask, name))
	}
	if kind, ok := services.KindFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldKind, kind))
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
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
