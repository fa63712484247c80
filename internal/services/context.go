package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	stageKey    contextKey = "stage"
	regionIDKey contextKey = "region_id"
)

// WithRunID attaches the pipeline run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run identifier, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithStage attaches the active stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext extracts the active stage name, if present.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageKey).(string)
	return stage, ok && stage != ""
}

// WithRegionID attaches the region being processed to the context so worker
// log lines can be correlated back to a panel or bubble.
func WithRegionID(ctx context.Context, regionID string) context.Context {
	if regionID == "" {
		return ctx
	}
	return context.WithValue(ctx, regionIDKey, regionID)
}

// RegionIDFromContext extracts the active region identifier, if present.
func RegionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(regionIDKey).(string)
	return id, ok && id != ""
}
