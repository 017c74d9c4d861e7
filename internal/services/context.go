package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	kindKey   contextKey = "kind"
	entityKey contextKey = "entity"
	requestID contextKey = "request_id"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithKind annotates context with the track kind being processed.
func WithKind(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, kindKey, kind)
}

// KindFromContext returns the track kind if present.
func KindFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(kindKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithEntity annotates context with the entity key being rendered.
func WithEntity(ctx context.Context, entity string) context.Context {
	if entity == "" {
		return ctx
	}
	return context.WithValue(ctx, entityKey, entity)
}

// EntityFromContext returns the entity key if present.
func EntityFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(entityKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with an HTTP request identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestID, id)
}

// RequestIDFromContext returns the HTTP request identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
