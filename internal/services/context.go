package services

import "context"

type contextKey string

const (
	itemIDKey    contextKey = "item_id"
	sweepKey     contextKey = "sweep"
	requestIDKey contextKey = "request_id"
)

// WithItemID annotates context with the wishlist item identifier.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the wishlist item identifier if present.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	switch val := ctx.Value(itemIDKey).(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithSweep annotates context with the sweep name (search/import).
func WithSweep(ctx context.Context, sweep string) context.Context {
	if sweep == "" {
		return ctx
	}
	return context.WithValue(ctx, sweepKey, sweep)
}

// SweepFromContext returns the sweep name if present.
func SweepFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(sweepKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
