package logging

import (
	"context"
	"log/slog"

	"cuesynth/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one track or summary run.
	FieldRunID = "run_id"
	// FieldKind is the track kind being processed (celebs, labels, ...).
	FieldKind = "kind"
	// FieldEntity is the entity key within a kind.
	FieldEntity = "entity"
	// FieldShard is the key of a raw result shard.
	FieldShard = "shard"
	// FieldKey is an output object key.
	FieldKey = "key"
	// FieldRequestID tags log lines emitted while serving an HTTP request.
	FieldRequestID = "request_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
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
	if kind, ok := services.KindFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldKind, kind))
	}
	if entity, ok := services.EntityFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEntity, entity))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
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
	return logger.With(Args(fields...)...)
}

const (
	// EventShardMalformed marks a shard skipped during extraction.
	EventShardMalformed = "shard_malformed"
	// EventEntityRenderFailed marks an entity whose track could not be written.
	EventEntityRenderFailed = "entity_render_failed"
	// EventKindFailed marks a kind that failed inside a multi-kind run.
	EventKindFailed = "kind_failed"
	// EventHTTPPanic marks a recovered handler panic.
	EventHTTPPanic = "http_panic"
)
