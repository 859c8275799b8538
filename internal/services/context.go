package services

import "context"

type ctxKey int

const (
	runIDKey ctxKey = iota
	stageKey
)

// WithRunID attaches the pipeline run identifier to ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return withValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier carried by ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return value(ctx, runIDKey)
}

// WithStage attaches the current pipeline stage name to ctx.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name carried by ctx.
func StageFromContext(ctx context.Context) (string, bool) {
	return value(ctx, stageKey)
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key ctxKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}
