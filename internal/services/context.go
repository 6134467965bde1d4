package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	slotKey  contextKey = "slot"
)

// WithRunID annotates context with the comparison run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the comparison run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSlot annotates context with the file slot ("a" or "b") being handled.
func WithSlot(ctx context.Context, slot string) context.Context {
	if slot == "" {
		return ctx
	}
	return context.WithValue(ctx, slotKey, slot)
}

// SlotFromContext returns the slot name if present.
func SlotFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(slotKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
